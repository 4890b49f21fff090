package dev

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/rrbuilder/internal/build"
	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/internal/logger"
	"github.com/vango-dev/rrbuilder/internal/metrics"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

// WatchPath is the WebSocket endpoint for change messages.
const WatchPath = "/_rrbuilder/watch"

const shutdownTimeout = 5 * time.Second

// ServerOptions configures the descriptor server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Builder compiles the manifest.
	Builder *build.Builder

	// Logger receives server logs. Default: discard.
	Logger *slog.Logger

	// Metrics is served on /metrics and records requests. May be nil.
	Metrics *metrics.Metrics

	// OnRebuild is called after every rebuild with the broadcast message
	// and the number of watchers that received it.
	OnRebuild func(msg Message, clients int)
}

// snapshot is the outcome of the latest rebuild.
type snapshot struct {
	version  int
	builtAt  time.Time
	result   *build.Result
	err      error
	flatJSON []byte
	treeJSON []byte
	digest   string
	byID     map[string]routetree.Descriptor
}

// Server serves the latest descriptors and pushes changes to watchers.
type Server struct {
	config     *config.Config
	options    ServerOptions
	builder    *build.Builder
	logger     *slog.Logger
	hub        *Hub
	watcher    *Watcher
	httpServer *http.Server
	mu         sync.RWMutex
	running    bool
	state      snapshot
	rebuildMu  sync.Mutex
}

// NewServer creates a new descriptor server.
func NewServer(options ServerOptions) *Server {
	log := options.Logger
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		config:  options.Config,
		options: options,
		builder: options.Builder,
		logger:  log,
	}
	s.hub = NewHub(options.Metrics, s.currentMessage)
	if options.Config.WatchEnabled() {
		s.watcher = NewWatcher(options.Builder.Source(), WatcherConfig{
			Interval: options.Config.PollInterval(),
		})
	}
	return s
}

// Hub returns the watch hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Rebuild compiles the manifest, replaces the served state and notifies
// watchers. A failed build keeps no descriptors: /routes reports the errors
// until the manifest is fixed.
func (s *Server) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	result, err := s.builder.Compile(ctx)
	next := snapshot{builtAt: time.Now(), result: result, err: err}
	if err == nil {
		next, err = prepare(next)
	}

	s.mu.Lock()
	next.version = s.state.version + 1
	s.state = next
	msg := s.messageLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("rebuild failed", "version", msg.Version, "error", err)
	} else {
		s.logger.Info("routes rebuilt", "version", msg.Version, "routes", msg.Count)
	}

	clients := s.hub.Broadcast(msg)
	if s.options.OnRebuild != nil {
		s.options.OnRebuild(msg, clients)
	}
	return err
}

// prepare pre-encodes the JSON forms and indexes descriptors by id.
func prepare(snap snapshot) (snapshot, error) {
	flat, err := build.Encode(snap.result.Flat, config.EncodingJSON)
	if err != nil {
		snap.err = err
		return snap, err
	}
	tree, err := build.Encode(snap.result.Tree, config.EncodingJSON)
	if err != nil {
		snap.err = err
		return snap, err
	}
	snap.flatJSON = flat
	snap.treeJSON = tree
	snap.digest = build.Digest(flat)
	snap.byID = make(map[string]routetree.Descriptor, len(snap.result.Flat))
	for _, d := range snap.result.Flat {
		snap.byID[d.ID] = d
	}
	return snap, nil
}

func (s *Server) currentMessage() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.version == 0 {
		return Message{}, false
	}
	return s.messageLocked(), true
}

func (s *Server) messageLocked() Message {
	st := s.state
	if st.err != nil {
		return Message{Type: MessageError, Version: st.version, Error: st.err.Error()}
	}
	return Message{Type: MessageRoutes, Version: st.version, Count: st.result.Count, Digest: st.digest}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.options.Metrics.Middleware)

	r.Get("/routes", s.handleRoutes(config.FormatFlat))
	r.Get("/routes/tree", s.handleRoutes(config.FormatTree))
	r.Get("/routes/*", s.handleRoute)
	r.Get("/healthz", s.handleHealth)
	if reg := s.options.Metrics.Registry(); reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	r.Get(WatchPath, s.hub.HandleWebSocket)
	return r
}

// handleRoutes serves flat or tree descriptors. JSON is served from the
// pre-encoded snapshot; ?encoding=yaml encodes on demand.
func (s *Server) handleRoutes(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		st := s.state
		s.mu.RUnlock()

		if st.result == nil || st.err != nil {
			writeFailure(w, st)
			return
		}

		encoding := config.EncodingJSON
		if r.URL.Query().Get("encoding") == config.EncodingYAML {
			encoding = config.EncodingYAML
		}

		// One entity tag per representation.
		etag := `"` + st.digest + "-" + format + "-" + encoding + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if encoding == config.EncodingYAML {
			data, err := build.Encode(st.result.Descriptors(format), config.EncodingYAML)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(data)
			return
		}

		data := st.flatJSON
		if format == config.FormatTree {
			data = st.treeJSON
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// handleRoute serves one descriptor by id. Ids may contain slashes.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")

	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	if st.result == nil || st.err != nil {
		writeFailure(w, st)
		return
	}
	d, ok := st.byID[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route with id " + id})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type health struct {
	Status  string     `json:"status"`
	Version int        `json:"version"`
	Routes  int        `json:"routes"`
	BuiltAt *time.Time `json:"builtAt,omitempty"`
	Watch   bool       `json:"watch"`
	Clients int        `json:"clients"`
	Error   string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	h := health{
		Status:  "ok",
		Version: st.version,
		Watch:   s.watcher != nil,
		Clients: s.hub.ClientCount(),
	}
	code := http.StatusOK
	switch {
	case st.version == 0:
		h.Status = "starting"
		code = http.StatusServiceUnavailable
	case st.err != nil:
		h.Status = "error"
		h.Error = st.err.Error()
		code = http.StatusServiceUnavailable
	default:
		h.Routes = st.result.Count
		h.BuiltAt = &st.builtAt
	}
	writeJSON(w, code, h)
}

// problem is one build error in an HTTP response.
type problem struct {
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Location string `json:"location,omitempty"`
}

func writeFailure(w http.ResponseWriter, st snapshot) {
	if st.err == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "routes not built yet"})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"version": st.version,
		"errors":  problems(st.err),
	})
}

// problems flattens a build error into its individual reports.
func problems(err error) []problem {
	list := errors.FromConfigErrors(err)
	if list == nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				list = append(list, errors.FromError(inner, "R099"))
			}
		} else {
			list = []*errors.Error{errors.FromError(err, "R099")}
		}
	}
	out := make([]problem, len(list))
	for i, e := range list {
		out[i] = problem{Code: e.Code, Message: e.Message, Detail: e.Detail, Location: e.Location.String()}
		if e.Code == "R099" && e.Wrapped != nil {
			out[i].Message = e.Wrapped.Error()
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

// Start builds once, starts the watcher and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ServeAddress())
	if err != nil {
		return errors.Newf(errors.CategoryCLI, "listen on %s: %v", s.config.ServeAddress(), err).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.Prime(ctx)
	}

	// Initial build; failures are served, not fatal
	s.Rebuild(ctx)

	if s.watcher != nil {
		s.watcher.OnChange(func(string) {
			s.options.Metrics.RecordManifestChange()
			s.logger.Info("manifest changed", "manifest", s.builder.Source().Name())
			s.Rebuild(ctx)
		})
		s.watcher.OnError(func(err error) {
			s.logger.Warn("manifest unavailable", "error", err)
		})
		if stopCh, ok := s.watcher.begin(); ok {
			go s.watcher.poll(ctx, stopCh)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving routes", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.stop()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) stop() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Close()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
