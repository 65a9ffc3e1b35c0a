package attachment

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/transport"
)

const (
	DefaultMaxUploadSize = 10 << 20
	multipartMemory      = 8 << 20
)

type ServiceAPI interface {
	List(ctx context.Context, taskID int64) ([]*Attachment, error)
	Upload(ctx context.Context, taskID int64, up *Upload, caller *internal.Principal) (*Attachment, error)
	Delete(ctx context.Context, id int64, caller *internal.Principal) error
}

type Handler struct {
	*transport.BaseHandler
	Service       ServiceAPI
	MaxUploadSize int64
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Handler{BaseHandler: base, Service: svc, MaxUploadSize: maxUploadSize}
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.Service.List(r.Context(), taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Principal(w, r)
	if !ok {
		return
	}
	taskID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteError(w, http.StatusRequestEntityTooLarge, "file exceeds the maximum upload size")
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed))
		return
	}
	defer file.Close()

	a, err := h.Service.Upload(r.Context(), taskID, &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, caller)
	if err != nil {
		h.Logger.Warn("UploadAttachment: service error", "error", err, "task_id", taskID, "user_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
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
