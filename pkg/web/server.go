package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/mindmap/pkg/canvas"
	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/model"
	"github.com/ritzau/mindmap/pkg/pubsub"
	"github.com/ritzau/mindmap/pkg/render"
	"github.com/ritzau/mindmap/pkg/session"
)

//go:embed static/*
var staticFiles embed.FS

// maxBodyBytes caps request bodies of the JSON endpoints
const maxBodyBytes = 1 << 20

// keepAliveInterval is how often idle SSE streams get a comment line
const keepAliveInterval = 30 * time.Second

// Dataset status states published on the dataset topic
const (
	StateLoaded   = "loaded"
	StateReloaded = "reloaded"
	StateError    = "error"
)

// DatasetResponse describes the template a server expands from
type DatasetResponse struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
	Origin      model.Position  `json:"origin"`
	Root        model.ChildSpec `json:"root"`
	Stats       dataset.Stats   `json:"stats"`
	Builtins    []string        `json:"builtins"`
}

// LayoutResponse describes the active layout and the available presets
type LayoutResponse struct {
	layout.Config
	Presets []string `json:"presets"`
}

// ClickRequest is the body of a click
type ClickRequest struct {
	NodeID string `json:"nodeId"`
}

// ChangesRequest is a batch of canvas changes such as drags and selections
type ChangesRequest struct {
	Nodes []canvas.NodeChange `json:"nodes"`
	Edges []canvas.EdgeChange `json:"edges"`
}

// SessionList is the response of GET /api/sessions
type SessionList struct {
	Sessions []string `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	sessions  *session.Manager
	publisher *pubsub.SSEPublisher
}

// NewServer creates a web server for the sessions of manager.
// pub must be the publisher the manager publishes graph events on.
func NewServer(manager *session.Manager, pub *pubsub.SSEPublisher) *Server {
	// dataset: buffer last 10 events, replay only the current state
	pub.ConfigureTopic(pubsub.TopicDataset, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		sessions:  manager,
		publisher: pub,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler including request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// PublishDatasetStatus announces a dataset load, reload or reload failure
func (s *Server) PublishDatasetStatus(state string, ds *dataset.Dataset, cause error) error {
	status := pubsub.DatasetStatus{State: state}
	if ds != nil {
		stats := ds.Index().Stats()
		status.Name = ds.Name
		status.Source = ds.Source()
		status.Nodes = stats.Nodes
		status.Depth = stats.Depth
	}
	if cause != nil {
		status.Message = cause.Error()
	}
	return s.publisher.Publish(pubsub.TopicDataset, state, status)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// SSE subscription endpoints
	api.HandleFunc("/subscribe/dataset", s.handleSubscribeDataset).Methods("GET")
	api.HandleFunc("/subscribe/session/{id}", s.handleSubscribeSession).Methods("GET")

	api.HandleFunc("/dataset", s.handleDataset).Methods("GET")
	api.HandleFunc("/layout", s.handleLayout).Methods("GET")

	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/click", s.handleClick).Methods("POST")
	api.HandleFunc("/sessions/{id}/reveal", s.handleReveal).Methods("POST")
	api.HandleFunc("/sessions/{id}/changes", s.handleChanges).Methods("POST")
	api.HandleFunc("/sessions/{id}/export.{format:dot|svg}", s.handleExport).Methods("GET")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no such endpoint: %s %s", r.Method, r.URL.Path))
	})

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("failed to open embedded static files", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleSubscribeDataset(w http.ResponseWriter, r *http.Request) {
	sub, err := s.publisher.Subscribe(r.Context(), pubsub.TopicDataset)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.stream(w, r, sub)
}

func (s *Server) handleSubscribeSession(w http.ResponseWriter, r *http.Request) {
	sub, err := s.sessions.Subscribe(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.stream(w, r, sub)
}

// stream forwards events of sub to the client until either side goes away
func (s *Server) stream(w http.ResponseWriter, r *http.Request, sub pubsub.Subscription) {
	defer sub.Close()
	topic := sub.Topic()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	logging.DebugContext(ctx, "event stream opened", "topic", topic)
	defer logging.DebugContext(ctx, "event stream closed", "topic", topic)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(ctx, "error writing SSE event", "topic", topic, "error", err)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds := s.sessions.Dataset()
	writeJSON(w, http.StatusOK, DatasetResponse{
		Name:        ds.Name,
		Description: ds.Description,
		Source:      ds.Source(),
		Origin:      ds.Origin,
		Root:        ds.Root,
		Stats:       ds.Index().Stats(),
		Builtins:    dataset.BuiltinNames(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LayoutResponse{
		Config:  s.sessions.Layout(),
		Presets: layout.PresetNames(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(r.Context())
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionList{Sessions: s.sessions.List()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req ClickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NodeID == "" {
		writeError(w, http.StatusBadRequest, errors.New("nodeId is required"))
		return
	}

	writeJSON(w, http.StatusOK, sess.Click(r.Context(), req.NodeID))
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req ClickRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results, err := sess.Reveal(r.Context(), req.NodeID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if results == nil {
		results = []session.ClickResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req ChangesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, sess.ApplyChanges(r.Context(), req.Nodes, req.Edges))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	format := mux.Vars(r)["format"]
	view := sess.View()
	out, err := render.Export(r.Context(), view.Graph, format, render.Options{Title: view.Dataset})
	if err != nil {
		logging.ErrorContext(r.Context(), "export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == "svg" {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(out)
}

// lookup resolves the {id} route variable, writing a 404 when it is unknown
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return false
	}
	return true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnknownNode):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}
