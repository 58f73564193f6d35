package server

import (
	"encoding/json"
	"net/http"

	"github.com/me/turnwheel/internal/replay"
	"github.com/me/turnwheel/pkg/model"
)

// replayResponse is the POST /replays payload: the created session plus
// every recorded step.
type replayResponse struct {
	Session *model.Session     `json:"session"`
	Steps   []model.StepRecord `json:"steps"`
}

func (s *Server) handleCreateReplay(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	trace, apiErr := decodeTrace(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	result, err := s.runner.Run(r.Context(), trace)
	if err != nil {
		s.logger.Error("replay failed", "trace", trace.Name, "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusUnprocessableEntity,
			&model.APIError{Code: model.ErrValidation, Message: err.Error()})
		return
	}

	respondCreated(w, reqID, replayResponse{
		Session: result.Session,
		Steps:   result.Steps,
	})
}

// decodeTrace reads a JSON trace from the request body and validates it.
func decodeTrace(r *http.Request) (*replay.Trace, *model.APIError) {
	var trace replay.Trace
	if err := json.NewDecoder(r.Body).Decode(&trace); err != nil {
		return nil, model.NewValidationError("invalid request body",
			model.FieldError{Message: err.Error()})
	}
	if err := trace.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}
	return &trace, nil
}
