package evaluation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Evaluation, error)
	GetByID(ctx context.Context, id int64) (*Evaluation, error)
	Create(ctx context.Context, dto *CreateEvaluationDTO, caller *internal.Principal) (*Evaluation, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	var (
		filter ListFilter
		err    error
	)
	if filter.TaskID, err = transport.QueryInt64(r, "task_id"); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if filter.EvaluatorID, err = transport.QueryInt64(r, "evaluator_id"); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	evals, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, evals)
}

func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var dto CreateEvaluationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.Create(r.Context(), &dto, caller)
	if err != nil {
		h.Logger.Warn("CreateEvaluation: service error", "error", err, "user_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}
