package task

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Task, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, dto *CreateTaskDTO, caller *internal.Principal) (*Task, error)
	Update(ctx context.Context, id int64, dto *UpdateTaskDTO, caller *internal.Principal) (*Task, error)
	Delete(ctx context.Context, id int64, caller *internal.Principal) error
	ListComments(ctx context.Context, taskID int64) ([]*Comment, error)
	AddComment(ctx context.Context, taskID int64, dto *CreateCommentDTO, caller *internal.Principal) (*Comment, error)
	ListHistory(ctx context.Context, taskID int64) ([]*History, error)
	ListTimeLogs(ctx context.Context, taskID int64) ([]*TimeLog, error)
	AddTimeLog(ctx context.Context, taskID int64, dto *CreateTimeLogDTO, caller *internal.Principal) (*TimeLog, error)
	Calendar(ctx context.Context, r CalendarRange, filter ListFilter) ([]*CalendarItem, error)
	CalendarICS(ctx context.Context, r CalendarRange, filter ListFilter) (string, error)
	Export(ctx context.Context, filter ListFilter) (*bytes.Buffer, string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.listFilter(w, r)
	if !ok {
		return
	}
	tasks, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var dto CreateTaskDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	t, err := h.Service.Create(r.Context(), &dto, caller)
	if err != nil {
		h.Logger.Warn("CreateTask: service error", "error", err, "user_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateTaskDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	t, err := h.Service.Update(r.Context(), id, &dto, caller)
	if err != nil {
		h.Logger.Warn("UpdateTask: service error", "error", err, "task_id", id, "user_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id, caller); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.Service.ListComments(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto CreateCommentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	c, err := h.Service.AddComment(r.Context(), id, &dto, caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	history, err := h.Service.ListHistory(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	logs, err := h.Service.ListTimeLogs(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) AddTimeLog(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	var dto CreateTimeLogDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	l, err := h.Service.AddTimeLog(r.Context(), id, &dto, caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	rng, filter, ok := h.calendarQuery(w, r)
	if !ok {
		return
	}
	items, err := h.Service.Calendar(r.Context(), rng, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	rng, filter, ok := h.calendarQuery(w, r)
	if !ok {
		return
	}
	feed, err := h.Service.CalendarICS(r.Context(), rng, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		h.Logger.Error("CalendarICS: failed to write response", "error", err)
	}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.listFilter(w, r)
	if !ok {
		return
	}
	filter.Limit, filter.Offset = 0, 0

	buf, filename, err := h.Service.Export(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("Export: failed to write response", "error", err)
	}
}

func (h *Handler) listFilter(w http.ResponseWriter, r *http.Request) (ListFilter, bool) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:   strings.ToUpper(q.Get("status")),
		Priority: strings.ToUpper(q.Get("priority")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	filter.Limit, filter.Offset = transport.Pagination(r)

	var err error
	if filter.AssigneeID, err = transport.QueryInt64(r, "assignee_id"); err != nil {
		h.HandleServiceError(w, err)
		return filter, false
	}
	if filter.DepartmentID, err = transport.QueryInt64(r, "department_id"); err != nil {
		h.HandleServiceError(w, err)
		return filter, false
	}
	return filter, true
}

func (h *Handler) calendarQuery(w http.ResponseWriter, r *http.Request) (CalendarRange, ListFilter, bool) {
	filter, ok := h.listFilter(w, r)
	if !ok {
		return CalendarRange{}, filter, false
	}
	filter.Limit, filter.Offset = 0, 0

	rng, err := ParseCalendarRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"), time.Now())
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("start", "start and end must be RFC 3339 or YYYY-MM-DD", internal.ErrCodeInvalidDate))
		return rng, filter, false
	}
	return rng, filter, true
}
