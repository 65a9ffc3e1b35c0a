package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	Analyze(ctx context.Context, question string) (*AnalysisResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type rejectedResponse struct {
	Error    string `json:"error"`
	SQLQuery string `json:"sql_query"`
	Result   any    `json:"result"`
}

// Analyze handles POST /analytics/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.Logger.Warn("Analyze: invalid request body", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.Service.Analyze(r.Context(), req.Question)
	if err != nil {
		var rejected *RejectedQueryError
		switch {
		case errors.Is(err, ErrQuestionRequired):
			h.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: ErrQuestionRequired.Error()})
		case errors.As(err, &rejected):
			h.WriteJSON(w, http.StatusBadRequest, rejectedResponse{
				Error:    ErrInvalidQuery.Error(),
				SQLQuery: PlaceholderQuery,
				Result:   nil,
			})
		default:
			h.Logger.Error("Analyze: pipeline failed", "error", err)
			h.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
