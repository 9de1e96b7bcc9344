package topology

import (
	"slices"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

// Graph is an undirected vertex adjacency graph over group-local indices.
// Neighbour lists are deduplicated, sorted and never contain the vertex
// itself. The zero value is an empty graph.
type Graph struct {
	adj [][]int
}

// NewGraph builds the adjacency graph of n vertices from polygon faces.
// Every consecutive pair of a face, including the closing pair from the last
// vertex back to the first, becomes an edge. Repeated vertices within a face
// produce no self-edge.
//
// A face index outside [0, n) is reported as ErrCodeInvalidInput.
func NewGraph(n int, faces [][]int) (*Graph, error) {
	sets := make([]map[int]struct{}, n)
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = map[int]struct{}{}
		}
		sets[a][b] = struct{}{}
	}

	for fi, face := range faces {
		for _, v := range face {
			if v < 0 || v >= n {
				return nil, errors.New(errors.ErrCodeInvalidInput, "face %d references vertex %d of %d", fi, v, n)
			}
		}
		if len(face) < 2 {
			continue
		}
		for i, a := range face {
			b := face[(i+1)%len(face)]
			if a == b {
				continue
			}
			link(a, b)
			link(b, a)
		}
	}

	g := &Graph{adj: make([][]int, n)}
	for v, set := range sets {
		nb := make([]int, 0, len(set))
		for u := range set {
			nb = append(nb, u)
		}
		slices.Sort(nb)
		g.adj[v] = nb
	}
	return g, nil
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.adj) }

// Neighbors returns the sorted neighbours of v. The slice must not be modified.
func (g *Graph) Neighbors(v int) []int { return g.adj[v] }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nb := range g.adj {
		n += len(nb)
	}
	return n / 2
}

// Layering is the breadth-first distance layering of a graph.
type Layering struct {
	// Root is the vertex at distance 0.
	Root int
	// Far is the expected far-end vertex. [Graph.Layers] leaves it at -1;
	// stationing fills it in.
	Far int
	// Distance holds each vertex's hop count from Root, or -1 if unreached.
	Distance []int
	// Layers[d] lists the vertices at distance d in discovery order.
	Layers [][]int
	// Unreached lists vertices in disconnected components, ascending.
	Unreached []int
}

// Layers runs a breadth-first traversal from root. Neighbours are visited in
// ascending order, so the discovery order within each layer is deterministic.
func (g *Graph) Layers(root int) *Layering {
	l := &Layering{Root: root, Far: -1, Distance: make([]int, len(g.adj))}
	for i := range l.Distance {
		l.Distance[i] = -1
	}
	if root < 0 || root >= len(g.adj) {
		for v := range g.adj {
			l.Unreached = append(l.Unreached, v)
		}
		return l
	}

	l.Distance[root] = 0
	l.Layers = [][]int{{root}}
	queue := []int{root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range g.adj[v] {
			if l.Distance[u] >= 0 {
				continue
			}
			d := l.Distance[v] + 1
			l.Distance[u] = d
			if d == len(l.Layers) {
				l.Layers = append(l.Layers, nil)
			}
			l.Layers[d] = append(l.Layers[d], u)
			queue = append(queue, u)
		}
	}

	for v, d := range l.Distance {
		if d < 0 {
			l.Unreached = append(l.Unreached, v)
		}
	}
	return l
}
