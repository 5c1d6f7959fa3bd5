package live

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/snapshot"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	markup, err := dom.Render(s.page)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	markup, err := s.Markup()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.app.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.CodeInvalidArgument).Wrap(err))
		return
	}
	res, err := s.Apply(ev)
	switch {
	case errors.Is(err, errors.CodeInvalidArgument):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, errors.CodeUnknownEvent):
		writeError(w, http.StatusUnprocessableEntity, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

type saveRequest struct {
	Name string `json:"name"`
}

type saveResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New(errors.CodeInvalidArgument).Wrap(err))
			return
		}
	}

	s.mu.Lock()
	markup, err := dom.Render(s.app.Element())
	state := s.app.Snapshot()
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	id, err := s.config.Store.Save(r.Context(), snapshot.New(req.Name, markup, state))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("snapshot saved", "id", id, "name", req.Name)
	writeJSON(w, http.StatusCreated, saveResponse{ID: id})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	metas, err := s.config.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if metas == nil {
		metas = []snapshot.Meta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.config.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(snap.Markup))
}
