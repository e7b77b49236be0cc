package nav

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// NavNode is one walkable tile centre in world space.
type NavNode struct {
	ID        string
	X         float64
	Y         float64
	Neighbors []string
}

// Grid is the world builder's view of a tile map.
type Grid interface {
	Width() int
	Height() int
	TileSize() float64
	Blocked(tx, ty int) bool
}

// NavMesh is an immutable walkability graph. A changed world needs a new mesh.
type NavMesh struct {
	nodes    map[string]*NavNode
	ids      []string
	tileSize float64
	fromGrid bool
}

var meshOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// NodeID formats the stable grid key for tile (tx, ty).
func NodeID(tx, ty int) string {
	return strconv.Itoa(tx) + "," + strconv.Itoa(ty)
}

// ParseNodeID is the inverse of NodeID.
func ParseNodeID(id string) (int, int, error) {
	xs, ys, ok := strings.Cut(id, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNodeID, id)
	}
	tx, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNodeID, id)
	}
	ty, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedNodeID, id)
	}
	return tx, ty, nil
}

// BuildMesh creates one node per unblocked tile of g, linked to its unblocked
// 4-neighbours in +x, -x, +y, -y order.
func BuildMesh(g Grid) *NavMesh {
	if g == nil {
		return &NavMesh{nodes: map[string]*NavNode{}, fromGrid: true}
	}
	return BuildMeshFunc(g.Width(), g.Height(), g.TileSize(), g.Blocked)
}

// BuildMeshFunc is BuildMesh for callers holding a bare blocked predicate.
func BuildMeshFunc(width, height int, tileSize float64, blocked func(tx, ty int) bool) *NavMesh {
	mesh := &NavMesh{
		nodes:    map[string]*NavNode{},
		tileSize: tileSize,
		fromGrid: true,
	}
	if width <= 0 || height <= 0 {
		return mesh
	}
	if blocked == nil {
		blocked = func(int, int) bool { return false }
	}

	walkable := func(tx, ty int) bool {
		return tx >= 0 && ty >= 0 && tx < width && ty < height && !blocked(tx, ty)
	}

	half := tileSize / 2
	for ty := 0; ty < height; ty++ {
		for tx := 0; tx < width; tx++ {
			if !walkable(tx, ty) {
				continue
			}
			node := &NavNode{
				ID:        NodeID(tx, ty),
				X:         float64(tx)*tileSize + half,
				Y:         float64(ty)*tileSize + half,
				Neighbors: make([]string, 0, 4),
			}
			for _, d := range meshOffsets {
				if walkable(tx+d[0], ty+d[1]) {
					node.Neighbors = append(node.Neighbors, NodeID(tx+d[0], ty+d[1]))
				}
			}
			mesh.nodes[node.ID] = node
			mesh.ids = append(mesh.ids, node.ID)
		}
	}
	return mesh
}

// NewMesh builds a mesh from explicit nodes. Inputs are copied. Neighbour ids
// that do not resolve are tolerated here and skipped by Search; Validate
// reports them.
func NewMesh(nodes ...NavNode) (*NavMesh, error) {
	mesh := &NavMesh{nodes: make(map[string]*NavNode, len(nodes))}
	for _, n := range nodes {
		if _, dup := mesh.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		node := n
		node.Neighbors = slices.Clone(n.Neighbors)
		mesh.nodes[n.ID] = &node
		mesh.ids = append(mesh.ids, n.ID)
	}
	slices.Sort(mesh.ids)
	return mesh, nil
}

// Node returns a copy of the node with the given id.
func (m *NavMesh) Node(id string) (NavNode, bool) {
	n := m.node(id)
	if n == nil {
		return NavNode{}, false
	}
	out := *n
	out.Neighbors = slices.Clone(n.Neighbors)
	return out, true
}

func (m *NavMesh) node(id string) *NavNode {
	if m == nil {
		return nil
	}
	return m.nodes[id]
}

// Has reports whether id is a node of the mesh.
func (m *NavMesh) Has(id string) bool {
	return m.node(id) != nil
}

// Len returns the node count.
func (m *NavMesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.nodes)
}

// IDs returns node ids, row-major for grid meshes and sorted for hand-built ones.
func (m *NavMesh) IDs() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.ids)
}

// TileSize is the tile edge used to build a grid mesh, zero for hand-built ones.
func (m *NavMesh) TileSize() float64 {
	if m == nil {
		return 0
	}
	return m.tileSize
}

// NearestNode returns the node whose centre is closest to (x, y).
// Ties go to the node earliest in IDs order.
func (m *NavMesh) NearestNode(x, y float64) (NavNode, bool) {
	if m.Len() == 0 {
		return NavNode{}, false
	}
	if m.fromGrid && m.tileSize > 0 {
		if n := m.node(NodeID(int(math.Floor(x/m.tileSize)), int(math.Floor(y/m.tileSize)))); n != nil {
			return m.Node(n.ID)
		}
	}
	best := ""
	bestDist := math.Inf(1)
	for _, id := range m.ids {
		n := m.nodes[id]
		if d := math.Hypot(n.X-x, n.Y-y); d < bestDist {
			best, bestDist = id, d
		}
	}
	return m.Node(best)
}

// Validate checks the adjacency invariant: neighbours exist, are unique and
// are not self references. Grid meshes must also link only 4-adjacent tiles.
func (m *NavMesh) Validate() error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, id := range m.ids {
		n := m.nodes[id]
		seen := make(map[string]struct{}, len(n.Neighbors))
		for _, nb := range n.Neighbors {
			switch {
			case nb == id:
				errs = append(errs, fmt.Errorf("%w: %s lists itself", ErrInvalidMesh, id))
				continue
			case m.nodes[nb] == nil:
				errs = append(errs, fmt.Errorf("%w: %s -> %s missing", ErrInvalidMesh, id, nb))
				continue
			}
			if _, dup := seen[nb]; dup {
				errs = append(errs, fmt.Errorf("%w: %s lists %s twice", ErrInvalidMesh, id, nb))
				continue
			}
			seen[nb] = struct{}{}
			if m.fromGrid && !gridAdjacent(id, nb) {
				errs = append(errs, fmt.Errorf("%w: %s -> %s not 4-adjacent", ErrInvalidMesh, id, nb))
			}
		}
	}
	return errors.Join(errs...)
}

func gridAdjacent(a, b string) bool {
	ax, ay, err := ParseNodeID(a)
	if err != nil {
		return false
	}
	bx, by, err := ParseNodeID(b)
	if err != nil {
		return false
	}
	dx, dy := ax-bx, ay-by
	return dx*dx+dy*dy == 1
}
