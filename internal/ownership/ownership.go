// Package ownership builds and renders the agent-to-sector holdings graph.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"dominion/internal/store"
)

// Unowned is the owner id of objects that belong to no agent
const Unowned = 0

// AgentVertex and SectorVertex name graph vertices
func AgentVertex(id int) string  { return "agent:" + strconv.Itoa(id) }
func SectorVertex(id int) string { return "sector:" + strconv.Itoa(id) }

// Build returns a directed graph with an edge from each owner to each
// sector it holds objects in, weighted by the object count
func Build(st *store.Store) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, a := range st.Agents() {
		// duplicate agent ids keep the first color
		if err := g.AddVertex(AgentVertex(a.ID)); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add agent vertex: %w", err)
		}
	}

	counts := make(map[[2]int]int)
	var order [][2]int
	st.EachObject(func(o store.SpatialObject) {
		key := [2]int{o.OwnerID, o.SectorID}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	})

	for _, key := range order {
		owner, sector := AgentVertex(key[0]), SectorVertex(key[1])
		for _, v := range []string{owner, sector} {
			if err := g.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("failed to add vertex %s: %w", v, err)
			}
		}
		if err := g.AddEdge(owner, sector, graph.EdgeWeight(counts[key])); err != nil {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", owner, sector, err)
		}
	}
	return g, nil
}

// Holdings returns sector -> object count for one owner
func Holdings(g graph.Graph[string, string], ownerID int) (map[int]int, error) {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get adjacency map: %w", err)
	}
	out := make(map[int]int)
	for target, edge := range adjacency[AgentVertex(ownerID)] {
		id, err := strconv.Atoi(strings.TrimPrefix(target, "sector:"))
		if err != nil {
			continue
		}
		out[id] = edge.Properties.Weight
	}
	return out, nil
}

// Render lays the graph out with graphviz and writes it to w in format,
// one of png, svg, jpg or dot
func Render(ctx context.Context, g graph.Graph[string, string], st *store.Store, format string, w io.Writer) error {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("failed to get adjacency map: %w", err)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	gvGraph, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("failed to create graphviz graph: %w", err)
	}
	defer gvGraph.Close()

	gvGraph.SetLayout("dot")
	gvGraph.SetBackgroundColor("black")
	gvGraph.Set("rankdir", "LR")
	if _, err := gvGraph.Attr(int(cgraph.EDGE), "color", "white"); err != nil {
		return fmt.Errorf("failed to set edge color: %w", err)
	}
	if _, err := gvGraph.Attr(int(cgraph.EDGE), "fontcolor", "white"); err != nil {
		return fmt.Errorf("failed to set edge font color: %w", err)
	}

	vertices := make([]string, 0, len(adjacency))
	for v := range adjacency {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)

	nodes := make(map[string]*graphviz.Node, len(vertices))
	for _, v := range vertices {
		node, err := gvGraph.CreateNodeByName(v)
		if err != nil {
			return fmt.Errorf("failed to create node %s: %w", v, err)
		}
		node.SetStyle("filled")
		node.SetFontColor("black")

		kind, idText, _ := strings.Cut(v, ":")
		id, _ := strconv.Atoi(idText)
		switch {
		case kind == "sector":
			node.SetShape("box")
			node.SetLabel("sector " + idText)
			node.SetFillColor("lightgray")
		case id == Unowned:
			node.SetShape("ellipse")
			node.SetLabel("unowned")
			node.SetFillColor("gray")
		default:
			node.SetShape("ellipse")
			node.SetLabel("agent " + idText)
			fill := "white"
			if a, ok := st.AgentByID(id); ok {
				fill = a.Color.Hex()
			}
			node.SetFillColor(fill)
		}
		nodes[v] = node
	}

	for _, source := range vertices {
		targets := make([]string, 0, len(adjacency[source]))
		for target := range adjacency[source] {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			edge, err := gvGraph.CreateEdgeByName("", nodes[source], nodes[target])
			if err != nil {
				return fmt.Errorf("failed to create edge %s -> %s: %w", source, target, err)
			}
			weight := adjacency[source][target].Properties.Weight
			edge.SetLabel(strconv.Itoa(weight))
			edge.SetPenWidth(1 + float64(weight)/4)
		}
	}

	if err := gv.Render(ctx, gvGraph, graphviz.Format(format), w); err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	return nil
}
