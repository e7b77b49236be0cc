package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
)

type leg struct {
	dir   cp.Vector
	ticks int
}

// routeInput replays a looping list of held directions, one call per tick.
type routeInput struct {
	legs []leg
	leg  int
	tick int
}

var routeDirections = map[string]cp.Vector{
	"U": {X: 0, Y: -1},
	"D": {X: 0, Y: 1},
	"L": {X: -1, Y: 0},
	"R": {X: 1, Y: 0},
	"S": {},
}

// parseRoute reads legs of the form "R:60,D:30,S:10"; S stands still.
func parseRoute(s string) (*routeInput, error) {
	r := &routeInput{}
	if strings.TrimSpace(s) == "" {
		return r, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, count, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("route leg %q: want DIR:TICKS", part)
		}
		dir, ok := routeDirections[strings.ToUpper(name)]
		if !ok {
			return nil, fmt.Errorf("route leg %q: unknown direction %q", part, name)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("route leg %q: bad tick count", part)
		}
		r.legs = append(r.legs, leg{dir: dir, ticks: n})
	}
	return r, nil
}

func (r *routeInput) Direction() cp.Vector {
	if len(r.legs) == 0 {
		return cp.Vector{}
	}
	l := r.legs[r.leg]
	r.tick++
	if r.tick >= l.ticks {
		r.tick = 0
		r.leg = (r.leg + 1) % len(r.legs)
	}
	return l.dir
}
