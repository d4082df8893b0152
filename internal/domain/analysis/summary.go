package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// DegreeStats describes the node degree distribution
type DegreeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Max    int     `json:"max"`
}

// Summary describes the structure of a network
type Summary struct {
	NetworkSUID types.SUID `json:"network_suid"`
	Name        string     `json:"name"`
	Nodes       int        `json:"nodes"`
	Edges       int        `json:"edges"`
	SelfLoops   int        `json:"self_loops"`
	Components  int        `json:"components"`
	Largest     int        `json:"largest_component"`
	// Isolated counts nodes without neighbors; self-loops do not count
	Isolated int         `json:"isolated"`
	Degree   DegreeStats `json:"degree"`
}

// Summarize computes counts, connected components and degree statistics.
// Edge direction is ignored; parallel edges count once toward connectivity
// but every edge counts toward degree.
func Summarize(n *types.Network) Summary {
	s := Summary{
		NetworkSUID: n.SUID,
		Name:        n.Name,
		Nodes:       len(n.Nodes),
		Edges:       len(n.Edges),
	}
	if len(n.Nodes) == 0 {
		return s
	}

	g := simple.NewUndirectedGraph()
	degree := make(map[int64]int, len(n.Nodes))
	for _, node := range n.Nodes {
		g.AddNode(simple.Node(int64(node.SUID)))
		degree[int64(node.SUID)] = 0
	}

	for _, e := range n.Edges {
		src, dst := int64(e.Source), int64(e.Target)
		if _, ok := degree[src]; !ok {
			continue
		}
		if _, ok := degree[dst]; !ok {
			continue
		}
		if src == dst {
			s.SelfLoops++
			degree[src] += 2
			continue
		}
		degree[src]++
		degree[dst]++
		if !g.HasEdgeBetween(src, dst) {
			g.SetEdge(g.NewEdge(g.Node(src), g.Node(dst)))
		}
	}

	components := topo.ConnectedComponents(g)
	s.Components = len(components)
	for _, c := range components {
		if len(c) > s.Largest {
			s.Largest = len(c)
		}
		if len(c) == 1 {
			s.Isolated++
		}
	}

	s.Degree = degreeStats(degree)
	return s
}

func degreeStats(degree map[int64]int) DegreeStats {
	values := make([]float64, 0, len(degree))
	maxDegree := 0
	for _, d := range degree {
		values = append(values, float64(d))
		if d > maxDegree {
			maxDegree = d
		}
	}
	sort.Float64s(values)

	ds := DegreeStats{
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		Max:    maxDegree,
	}
	if len(values) > 1 {
		ds.StdDev = stat.StdDev(values, nil)
	}
	return ds
}
