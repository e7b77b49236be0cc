package main

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	r, err := parseRoute("R:2, u:1")
	require.NoError(t, err)

	want := []cp.Vector{{X: 1}, {X: 1}, {Y: -1}, {X: 1}}
	for i, w := range want {
		assert.Equal(t, w, r.Direction(), "tick %d", i)
	}
}

func TestParseRouteEmptyStandsStill(t *testing.T) {
	r, err := parseRoute("")
	require.NoError(t, err)
	assert.Equal(t, cp.Vector{}, r.Direction())
}

func TestParseRouteErrors(t *testing.T) {
	for _, bad := range []string{"R", "X:3", "R:0", "R:abc"} {
		_, err := parseRoute(bad)
		assert.Error(t, err, bad)
	}
}
