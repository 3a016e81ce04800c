// Package server exposes dashboard engines over HTTP.
//
// Each named dashboard gets a workspace: an [engine.Engine] loaded from the
// store on first use, plus a [persist.Saver] that writes committed changes
// back after the debounce window. Requests for one dashboard are serialized
// by the workspace mutex, which stands in for the single UI event loop the
// engine expects. Different dashboards proceed in parallel.
//
// Routes:
//
//	GET    /healthz
//	GET    /dashboards
//	GET    /dashboards/{name}
//	PUT    /dashboards/{name}
//	POST   /dashboards/{name}/items
//	DELETE /dashboards/{name}/items/{id}
//	POST   /dashboards/{name}/arrange
//	POST   /dashboards/{name}/undo
//	POST   /dashboards/{name}/redo
//	GET    /dashboards/{name}/layouts/{breakpoint}
//	GET    /dashboards/{name}/active?width=px
//	POST   /dashboards/{name}/gestures
//	PATCH  /dashboards/{name}/gestures/{sid}
//	POST   /dashboards/{name}/gestures/{sid}/end
//	DELETE /dashboards/{name}/gestures/{sid}
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// DefaultGestureTimeout is how long a gesture may go without a frame before
// the server cancels it.
const DefaultGestureTimeout = 30 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGestureTimeout sets how long a gesture may stay idle before it is
// cancelled. Non-positive values keep the default.
func WithGestureTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.gestureTimeout = d
		}
	}
}

// Server routes HTTP requests to per-dashboard engines.
type Server struct {
	cfg            config.Config
	store          store.Store
	logger         *log.Logger
	gestureTimeout time.Duration

	mu         sync.Mutex
	workspaces map[string]*workspace
}

type workspace struct {
	mu     sync.Mutex
	engine *engine.Engine
	saver  *persist.Saver

	// idle cancels an abandoned gesture; gen invalidates timers that fired
	// while a newer frame held the lock.
	idle *time.Timer
	gen  int
}

// New returns a server backed by st.
func New(cfg config.Config, st store.Store, opts ...Option) *Server {
	cfg.SetDefaults()
	s := &Server{
		cfg:            cfg,
		store:          st,
		logger:         log.NewWithOptions(io.Discard, log.Options{}),
		gestureTimeout: DefaultGestureTimeout,
		workspaces:     make(map[string]*workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/dashboards", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Post("/items", s.handleAddItem)
			r.Delete("/items/{id}", s.handleRemoveItem)
			r.Post("/arrange", s.handleArrange)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Get("/layouts/{breakpoint}", s.handleLayout)
			r.Get("/active", s.handleActive)
			r.Post("/gestures", s.handleGestureStart)
			r.Patch("/gestures/{sid}", s.handleGestureMove)
			r.Post("/gestures/{sid}/end", s.handleGestureEnd)
			r.Delete("/gestures/{sid}", s.handleGestureCancel)
		})
	})
	return r
}

// Flush writes every pending save.
func (s *Server) Flush(ctx context.Context) error {
	s.mu.Lock()
	savers := make([]*persist.Saver, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		savers = append(savers, ws.saver)
	}
	s.mu.Unlock()

	var errs []error
	for _, sv := range savers {
		if err := sv.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// workspace returns the workspace for name, loading it from the store on
// first use. A dashboard missing from the store starts empty.
func (s *Server) workspace(ctx context.Context, name string) (*workspace, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[name]; ok {
		return ws, nil
	}

	saver := persist.New(s.store, name,
		persist.WithDelay(s.cfg.DebounceDuration()),
		persist.WithLogger(s.logger.With("dashboard", name)),
	)
	eng, err := engine.New(s.cfg,
		engine.WithLogger(s.logger.With("dashboard", name)),
		engine.WithSaver(saver),
	)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Load(ctx, name)
	switch {
	case err == nil:
		if _, err := eng.Load(snap); err != nil {
			return nil, err
		}
		saver.MarkSaved(snap)
	case errors.Is(err, errors.ErrCodeNotFound):
		s.logger.Info("new dashboard", "dashboard", name)
	default:
		return nil, err
	}

	ws := &workspace{engine: eng, saver: saver}
	s.workspaces[name] = ws
	return ws, nil
}

// with runs fn on the named dashboard's workspace with its lock held.
func (s *Server) with(w http.ResponseWriter, r *http.Request, fn func(ws *workspace) (int, any, error)) {
	ws, err := s.workspace(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ws.mu.Lock()
	status, body, err := fn(ws)
	ws.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, body)
}

// track arms the idle timer while ws has an active gesture and stops it
// otherwise. Called with ws.mu held.
func (s *Server) track(ws *workspace) {
	ws.gen++
	if ws.idle != nil {
		ws.idle.Stop()
		ws.idle = nil
	}
	if ws.engine.Session() == nil {
		return
	}
	gen := ws.gen
	ws.idle = time.AfterFunc(s.gestureTimeout, func() { s.expire(ws, gen) })
}

// expire cancels the gesture a client abandoned. Cancel goes through the
// normal commit path, so the layout returns to its pre-gesture state.
func (s *Server) expire(ws *workspace, gen int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.gen != gen {
		return
	}
	ws.idle = nil
	sess := ws.engine.Session()
	if sess == nil {
		return
	}
	if _, err := ws.engine.Cancel(sess); err != nil {
		s.logger.Error("cancel idle gesture", "session", sess.ID, "error", err)
		return
	}
	s.logger.Warn("idle gesture cancelled", "item", sess.ItemID, "session", sess.ID, "after", s.gestureTimeout)
}
