package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/snap"
)

// =============================================================================
// Request / Response Types
// =============================================================================

type addItemRequest struct {
	ID        string              `json:"id"`
	W         int                 `json:"w"`
	H         int                 `json:"h"`
	MinW      int                 `json:"minW"`
	MinH      int                 `json:"minH"`
	MaxW      int                 `json:"maxW"`
	Component dashboard.Component `json:"component"`
}

type arrangeRequest struct {
	Policy string `json:"policy"`
}

type gestureRequest struct {
	Item string             `json:"item"`
	Kind engine.GestureKind `json:"kind"`
}

// frameRequest carries either a grid rectangle or a pixel box.
type frameRequest struct {
	Rect *grid.Rect `json:"rect,omitempty"`
	Box  *grid.Box  `json:"box,omitempty"`
}

type gestureResponse struct {
	Session    string           `json:"session"`
	Item       string           `json:"item"`
	Kind       string           `json:"kind"`
	StartRect  grid.Rect        `json:"startRect"`
	Candidates []snap.Candidate `json:"candidates"`
}

type outcomeResponse struct {
	Layout   grid.Layout      `json:"layout"`
	Rect     grid.Rect        `json:"rect"`
	Collided bool             `json:"collided"`
	Reverted bool             `json:"reverted"`
	Pushed   []string         `json:"pushed,omitempty"`
	Recorded bool             `json:"recorded"`
	Guides   []snap.Candidate `json:"guides,omitempty"`
}

type historyResponse struct {
	Changed bool        `json:"changed"`
	CanUndo bool        `json:"canUndo"`
	CanRedo bool        `json:"canRedo"`
	Layout  grid.Layout `json:"layout"`
}

type loadResponse struct {
	Items    int      `json:"items"`
	Warnings []string `json:"warnings"`
}

type layoutResponse struct {
	Breakpoint string      `json:"breakpoint"`
	Columns    int         `json:"columns"`
	Layout     grid.Layout `json:"layout"`
}

func toOutcome(o engine.Outcome) outcomeResponse {
	return outcomeResponse(o)
}

// =============================================================================
// Dashboards
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dashboards": names})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.with(w, r, func(ws *workspace) (int, any, error) {
		return http.StatusOK, ws.engine.Snapshot(), nil
	})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	snapIn, err := dashboard.Read(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.with(w, r, func(ws *workspace) (int, any, error) {
		warnings, err := ws.engine.Load(snapIn)
		if err != nil {
			return 0, nil, err
		}
		ws.saver.Schedule(ws.engine.Snapshot())

		resp := loadResponse{Items: len(ws.engine.Snapshot().Layout), Warnings: []string{}}
		for _, warn := range warnings {
			resp.Warnings = append(resp.Warnings, warn.Error())
		}
		return http.StatusOK, resp, nil
	})
}

// =============================================================================
// Edits
// =============================================================================

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.with(w, r, func(ws *workspace) (int, any, error) {
		it, err := ws.engine.AddItem(grid.Item{
			ID: req.ID, W: req.W, H: req.H,
			MinW: req.MinW, MinH: req.MinH, MaxW: req.MaxW,
		}, req.Component)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, it, nil
	})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.with(w, r, func(ws *workspace) (int, any, error) {
		if err := ws.engine.RemoveItem(id); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	var req arrangeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.with(w, r, func(ws *workspace) (int, any, error) {
		l, err := ws.engine.AutoArrange(req.Policy)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, map[string]grid.Layout{"layout": l}, nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.with(w, r, func(ws *workspace) (int, any, error) {
		return http.StatusOK, historyOf(ws.engine, ws.engine.Undo()), nil
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.with(w, r, func(ws *workspace) (int, any, error) {
		return http.StatusOK, historyOf(ws.engine, ws.engine.Redo()), nil
	})
}

func historyOf(e *engine.Engine, changed bool) historyResponse {
	return historyResponse{
		Changed: changed,
		CanUndo: e.CanUndo(),
		CanRedo: e.CanRedo(),
		Layout:  e.Layout(),
	}
}

// =============================================================================
// Breakpoints
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "breakpoint")
	s.with(w, r, func(ws *workspace) (int, any, error) {
		l, err := ws.engine.Projected(name)
		if err != nil {
			return 0, nil, err
		}
		bp, _ := ws.engine.Projector().Breakpoint(name)
		return http.StatusOK, layoutResponse{
			Breakpoint: name,
			Columns:    ws.engine.Projector().Columns(bp),
			Layout:     l,
		}, nil
	})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil || width < 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidGeometry, "width must be a non-negative number"))
		return
	}
	s.with(w, r, func(ws *workspace) (int, any, error) {
		bp, l := ws.engine.Active(width)
		return http.StatusOK, layoutResponse{
			Breakpoint: bp.Name,
			Columns:    ws.engine.Projector().Columns(bp),
			Layout:     l,
		}, nil
	})
}

// =============================================================================
// Gestures
// =============================================================================

func (s *Server) handleGestureStart(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.with(w, r, func(ws *workspace) (int, any, error) {
		defer s.track(ws)
		var (
			sess *engine.DragSession
			err  error
		)
		switch req.Kind {
		case engine.GestureDrag, "":
			sess, err = ws.engine.StartDrag(req.Item)
		case engine.GestureResize:
			sess, err = ws.engine.StartResize(req.Item)
		default:
			err = errors.New(errors.ErrCodeInvalidGeometry, "unknown gesture kind %q", req.Kind)
		}
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, gestureResponse{
			Session:    sess.ID,
			Item:       sess.ItemID,
			Kind:       string(sess.Kind),
			StartRect:  sess.StartRect,
			Candidates: ws.engine.Candidates(),
		}, nil
	})
}

func (s *Server) handleGestureMove(w http.ResponseWriter, r *http.Request) {
	s.frame(w, r, (*engine.Engine).Move, (*engine.Engine).MoveBox)
}

func (s *Server) handleGestureEnd(w http.ResponseWriter, r *http.Request) {
	s.frame(w, r, (*engine.Engine).End, (*engine.Engine).EndBox)
}

func (s *Server) handleGestureCancel(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	s.with(w, r, func(ws *workspace) (int, any, error) {
		defer s.track(ws)
		sess, err := session(ws.engine, sid)
		if err != nil {
			return 0, nil, err
		}
		out, err := ws.engine.Cancel(sess)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toOutcome(out), nil
	})
}

type (
	rectFrame func(*engine.Engine, *engine.DragSession, grid.Rect) (engine.Outcome, error)
	boxFrame  func(*engine.Engine, *engine.DragSession, grid.Box) (engine.Outcome, error)
)

func (s *Server) frame(w http.ResponseWriter, r *http.Request, byRect rectFrame, byBox boxFrame) {
	var req frameRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if (req.Rect == nil) == (req.Box == nil) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidGeometry, "exactly one of rect or box is required"))
		return
	}
	sid := chi.URLParam(r, "sid")
	s.with(w, r, func(ws *workspace) (int, any, error) {
		sess, err := session(ws.engine, sid)
		if err != nil {
			return 0, nil, err
		}
		defer s.track(ws)
		var out engine.Outcome
		if req.Rect != nil {
			out, err = byRect(ws.engine, sess, *req.Rect)
		} else {
			out, err = byBox(ws.engine, sess, *req.Box)
		}
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toOutcome(out), nil
	})
}

// session returns the engine's active gesture if its id is sid.
func session(e *engine.Engine, sid string) (*engine.DragSession, error) {
	sess := e.Session()
	if sess == nil || sess.ID != sid {
		return nil, errors.New(errors.ErrCodeNoGesture, "gesture %s is not active", sid)
	}
	return sess, nil
}
