package canvas

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/ritzau/mindmap/pkg/model"
)

// GraphDiff represents the difference between two graph states
type GraphDiff struct {
	AddedNodes    []model.DisplayNode `json:"addedNodes"`
	RemovedNodes  []string            `json:"removedNodes"`  // Node IDs
	ModifiedNodes []model.DisplayNode `json:"modifiedNodes"` // Nodes with changed position, flags or payload
	AddedEdges    []model.DisplayEdge `json:"addedEdges"`
	RemovedEdges  []string            `json:"removedEdges"` // Edge IDs
	ModifiedEdges []model.DisplayEdge `json:"modifiedEdges"`
	FullGraph     bool                `json:"fullGraph"` // True if this is a full graph, not a diff
	Hash          string              `json:"hash"`      // Hash of the graph after the change
}

// Empty reports whether the diff carries no change
func (d *GraphDiff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0 && len(d.ModifiedEdges) == 0
}

// Snapshot is a hashed copy of a graph state used for diffing
type Snapshot struct {
	Hash  string
	Nodes map[string]model.DisplayNode // nodeID -> node
	Edges map[string]model.DisplayEdge // edgeID -> edge
}

// HashGraph returns a stable content hash of the graph
func HashGraph(g *model.Graph) string {
	jsonData, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}

// CreateSnapshot creates a snapshot from graph data for diffing
func CreateSnapshot(g *model.Graph) *Snapshot {
	snapshot := &Snapshot{
		Hash:  HashGraph(g),
		Nodes: make(map[string]model.DisplayNode, len(g.Nodes)),
		Edges: make(map[string]model.DisplayEdge, len(g.Edges)),
	}
	for _, node := range g.Nodes {
		snapshot.Nodes[node.ID] = node
	}
	for _, edge := range g.Edges {
		snapshot.Edges[edge.ID] = edge
	}
	return snapshot
}

// ComputeDiff computes the difference between a snapshot and a newer graph.
// Entries are reported in the new graph's display order.
func ComputeDiff(old *Snapshot, g *model.Graph) *GraphDiff {
	if old == nil {
		return &GraphDiff{
			AddedNodes: g.Nodes,
			AddedEdges: g.Edges,
			FullGraph:  true,
			Hash:       HashGraph(g),
		}
	}

	diff := &GraphDiff{
		AddedNodes:    make([]model.DisplayNode, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]model.DisplayNode, 0),
		AddedEdges:    make([]model.DisplayEdge, 0),
		RemovedEdges:  make([]string, 0),
		ModifiedEdges: make([]model.DisplayEdge, 0),
		Hash:          HashGraph(g),
	}

	seenNodes := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		seenNodes[node.ID] = true
		oldNode, exists := old.Nodes[node.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, node)
		case !reflect.DeepEqual(oldNode, node):
			diff.ModifiedNodes = append(diff.ModifiedNodes, node)
		}
	}

	seenEdges := make(map[string]bool, len(g.Edges))
	for _, edge := range g.Edges {
		seenEdges[edge.ID] = true
		oldEdge, exists := old.Edges[edge.ID]
		switch {
		case !exists:
			diff.AddedEdges = append(diff.AddedEdges, edge)
		case oldEdge != edge:
			diff.ModifiedEdges = append(diff.ModifiedEdges, edge)
		}
	}

	for id := range old.Nodes {
		if !seenNodes[id] {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}
	for id := range old.Edges {
		if !seenEdges[id] {
			diff.RemovedEdges = append(diff.RemovedEdges, id)
		}
	}
	slices.Sort(diff.RemovedNodes)
	slices.Sort(diff.RemovedEdges)

	return diff
}
