package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Department, error)
	Tree(ctx context.Context) ([]*TreeNode, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, dto *CreateDepartmentDTO) (*Department, error)
	Update(ctx context.Context, id int64, dto *UpdateDepartmentDTO) (*Department, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	parentID, err := transport.QueryInt64(r, "parent_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	filter := ListFilter{ParentID: parentID, TopLevel: r.URL.Query().Get("top_level") == "true"}

	departments, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListDepartments: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, departments)
}

func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.Tree(r.Context())
	if err != nil {
		h.Logger.Error("GetTree: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	d, err := h.Service.Create(r.Context(), &dto)
	if err != nil {
		h.Logger.Warn("CreateDepartment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateDepartmentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	d, err := h.Service.Update(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Warn("UpdateDepartment: service error", "department_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
