package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/mindmap/pkg/canvas"
	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/expand"
	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/model"
	"github.com/ritzau/mindmap/pkg/pubsub"
)

// Event types published on a session topic
const (
	EventExpanded  = string(expand.ActionExpand)
	EventCollapsed = string(expand.ActionCollapse)
	EventChanged   = "changed"
	EventReset     = "reset"
)

// View is a consistent copy of a session's graph
type View struct {
	ID      string       `json:"id"`
	Version int          `json:"version"`
	Dataset string       `json:"dataset"`
	Graph   *model.Graph `json:"graph"`
	Created time.Time    `json:"created"`
}

// ClickResult reports what a click did
type ClickResult struct {
	Changed bool              `json:"changed"`
	Delta   expand.Delta      `json:"delta"`
	Diff    *canvas.GraphDiff `json:"diff,omitempty"`
	Version int               `json:"version"`
}

// ChangeResult reports the effect of a batch of canvas changes
type ChangeResult struct {
	Diff    *canvas.GraphDiff `json:"diff"`
	Version int               `json:"version"`
}

// Session is one canvas' displayed graph.
//
// All transitions take the session lock, so clicks and drags on one canvas are
// applied one at a time in arrival order.
type Session struct {
	id        string
	created   time.Time
	publisher pubsub.Publisher

	mu       sync.Mutex
	store    *canvas.Store
	ctrl     *expand.Controller
	ds       *dataset.Dataset
	version  int
	snapshot *canvas.Snapshot
	closed   bool // deleted; nothing is published anymore
}

func newSession(id string, ds *dataset.Dataset, ctrl *expand.Controller, pub pubsub.Publisher) *Session {
	s := &Session{
		id:        id,
		created:   time.Now(),
		publisher: pub,
	}
	s.resetLocked(ds, ctrl)
	return s
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Version returns the number of state changes applied so far
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// View returns a copy of the current graph
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		ID:      s.id,
		Version: s.version,
		Dataset: s.ds.Name,
		Graph:   s.store.Graph(),
		Created: s.created,
	}
}

// Click toggles a node. Unknown or childless nodes leave the session untouched.
func (s *Session) Click(ctx context.Context, nodeID string) ClickResult {
	ctx = logging.WithSessionID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clickLocked(ctx, nodeID)
}

func (s *Session) clickLocked(ctx context.Context, nodeID string) ClickResult {
	delta, changed := s.ctrl.Click(s.store, nodeID)
	if !changed {
		logging.DebugContext(ctx, "click had no effect", "node", nodeID)
		return ClickResult{Version: s.version}
	}

	diff := s.commitLocked(ctx, string(delta.Action), nodeID)
	logging.InfoContext(ctx, "node "+string(delta.Action),
		"node", nodeID,
		"nodes", len(s.snapshot.Nodes),
		"version", s.version,
	)
	return ClickResult{
		Changed: true,
		Delta:   delta,
		Diff:    diff,
		Version: s.version,
	}
}

// Reveal expands every collapsed ancestor of nodeID, root first, so that the
// node becomes displayed. It returns the clicks it performed.
// The whole walk holds the session lock so no other transition can interleave.
func (s *Session) Reveal(ctx context.Context, nodeID string) ([]ClickResult, error) {
	ctx = logging.WithSessionID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	ix := s.ds.Index()
	if !ix.Has(nodeID) {
		return nil, ErrUnknownNode
	}

	var results []ClickResult
	for _, ancestor := range ix.Ancestors(nodeID) {
		node, ok := s.store.Node(ancestor)
		if !ok {
			// Ancestors are root first, so each one is displayed once its parent expanded
			return results, fmt.Errorf("reveal %s: ancestor %s not displayed", nodeID, ancestor)
		}
		if node.Data.IsExpanded {
			continue
		}
		results = append(results, s.clickLocked(ctx, ancestor))
	}
	return results, nil
}

// ApplyChanges applies canvas node and edge changes such as drags.
// Removal of the root node is refused.
func (s *Session) ApplyChanges(ctx context.Context, nodes []canvas.NodeChange, edges []canvas.EdgeChange) ChangeResult {
	ctx = logging.WithSessionID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	rootID := s.ds.Root.ID
	filtered := nodes[:0:0]
	for _, c := range nodes {
		if c.Type == canvas.ChangeRemove && c.ID == rootID {
			logging.WarnContext(ctx, "refusing to remove root node", "node", rootID)
			continue
		}
		filtered = append(filtered, c)
	}

	s.store.ApplyNodeChanges(filtered)
	s.store.ApplyEdgeChanges(edges)

	diff := canvas.ComputeDiff(s.snapshot, s.store.Graph())
	if diff.Empty() {
		return ChangeResult{Diff: diff, Version: s.version}
	}

	diff = s.commitLocked(ctx, EventChanged, "")
	logging.TraceContext(ctx, "canvas changes applied",
		"nodeChanges", len(filtered),
		"edgeChanges", len(edges),
		"version", s.version,
	)
	return ChangeResult{Diff: diff, Version: s.version}
}

// Reset discards the displayed graph and starts over from the root of ds
func (s *Session) Reset(ctx context.Context, ds *dataset.Dataset, ctrl *expand.Controller) {
	ctx = logging.WithSessionID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked(ds, ctrl)
	s.version++
	s.publishLocked(ctx, EventReset, "", canvas.ComputeDiff(nil, s.store.Graph()))
	logging.InfoContext(ctx, "session reset", "dataset", ds.Name, "version", s.version)
}

func (s *Session) resetLocked(ds *dataset.Dataset, ctrl *expand.Controller) {
	s.ds = ds
	s.ctrl = ctrl
	s.store = canvas.New([]model.DisplayNode{ds.RootNode()}, nil)
	s.snapshot = canvas.CreateSnapshot(s.store.Graph())
}

// commitLocked bumps the version, diffs against the last snapshot and publishes
func (s *Session) commitLocked(ctx context.Context, eventType, nodeID string) *canvas.GraphDiff {
	g := s.store.Graph()
	diff := canvas.ComputeDiff(s.snapshot, g)
	s.snapshot = canvas.CreateSnapshot(g)
	s.version++
	s.publishLocked(ctx, eventType, nodeID, diff)
	return diff
}

// close stops publishing; handlers still holding the session keep working on it
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) publishLocked(ctx context.Context, eventType, nodeID string, diff *canvas.GraphDiff) {
	if s.publisher == nil || s.closed {
		return
	}
	event := pubsub.GraphEvent{
		SessionID: s.id,
		Version:   s.version,
		NodeID:    nodeID,
		Diff:      diff,
	}
	if err := s.publisher.Publish(pubsub.SessionTopic(s.id), eventType, event); err != nil {
		logging.WarnContext(ctx, "failed to publish graph event", "type", eventType, "error", err)
	}
}
