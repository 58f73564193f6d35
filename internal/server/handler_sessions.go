package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/turnwheel/pkg/model"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}
	opts.Kind = r.URL.Query().Get("kind")
	opts.Clamp()

	sessions, total, err := s.store.ListSessions(r.Context(), opts)
	if err != nil {
		s.logger.Error("list sessions", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}

	respondList(w, reqID, sessions, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(sessions) < total,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.logger.Error("get session", "id", id, "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load session"})
		return
	}
	if sess == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("session", id))
		return
	}

	respondOK(w, reqID, sess)
}

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.logger.Error("get session for steps", "id", id, "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load session"})
		return
	}
	if sess == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("session", id))
		return
	}

	steps, err := s.store.ListSteps(r.Context(), id)
	if err != nil {
		s.logger.Error("list steps", "id", id, "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list steps"})
		return
	}
	if steps == nil {
		steps = []*model.StepRecord{}
	}

	respondOK(w, reqID, steps)
}
