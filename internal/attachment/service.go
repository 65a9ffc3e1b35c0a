package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/task"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type RepositoryAPI interface {
	ListByTask(ctx context.Context, taskID int64) ([]*Attachment, error)
	GetByID(ctx context.Context, id int64) (*Attachment, error)
	Create(ctx context.Context, a *Attachment) error
	Delete(ctx context.Context, id int64) error
}

type TaskReader interface {
	GetByID(ctx context.Context, id int64) (*task.Task, error)
}

type Service struct {
	repo    RepositoryAPI
	tasks   TaskReader
	storage Storage
	logger  *slog.Logger
	newKey  func(taskID int64, filename string) (string, error)
}

func NewService(repo RepositoryAPI, tasks TaskReader, storage Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		tasks:   tasks,
		storage: storage,
		logger:  logger,
		newKey:  ObjectKey,
	}
}

// ObjectKey places a file under attachments/<task>/<nanoid><ext>.
func ObjectKey(taskID int64, filename string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("attachments", fmt.Sprint(taskID), id+ext), nil
}

func (s *Service) List(ctx context.Context, taskID int64) ([]*Attachment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.Error("failed to list attachments", "task_id", taskID, "error", err)
		return nil, internal.NewInternalError("failed to list attachments", err)
	}
	for _, a := range items {
		s.sign(ctx, a)
	}
	return items, nil
}

func (s *Service) Upload(ctx context.Context, taskID int64, up *Upload, caller *internal.Principal) (*Attachment, error) {
	if strings.TrimSpace(up.Filename) == "" {
		return nil, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed)
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	key, err := s.newKey(taskID, up.Filename)
	if err != nil {
		return nil, internal.NewInternalError("failed to allocate storage key", err)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.storage.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		s.logger.Error("failed to store attachment", "task_id", taskID, "key", key, "error", err)
		return nil, internal.NewExternalError("failed to store file", err)
	}

	a := &Attachment{
		TaskID:         taskID,
		File:           key,
		Filename:       filepath.Base(up.Filename),
		ContentType:    contentType,
		Size:           up.Size,
		UploadedByID:   caller.ID,
		UploadedByName: caller.Username,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error("failed to record attachment", "task_id", taskID, "key", key, "error", err)
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.logger.Warn("orphaned attachment object", "key", key, "error", derr)
		}
		return nil, internal.NewInternalError("failed to record attachment", err)
	}
	s.logger.Info("attachment uploaded",
		"attachment_id", a.ID,
		"task_id", taskID,
		"size", a.Size,
		"user_id", caller.ID)

	s.sign(ctx, a)
	return a, nil
}

// Delete is allowed for the uploader and for managers.
func (s *Service) Delete(ctx context.Context, id int64, caller *internal.Principal) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get attachment", "attachment_id", id, "error", err)
		return internal.NewInternalError("failed to get attachment", err)
	}
	if a == nil {
		return internal.ErrAttachmentNotFound
	}
	if a.UploadedByID != caller.ID && !caller.HasRole(internal.RoleAdmin, internal.RoleManager) {
		return internal.ErrUnauthorizedAccess
	}

	if err := s.storage.Delete(ctx, a.File); err != nil {
		s.logger.Error("failed to delete attachment object", "key", a.File, "error", err)
		return internal.NewExternalError("failed to delete file", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete attachment", "attachment_id", id, "error", err)
		return internal.NewInternalError("failed to delete attachment", err)
	}
	s.logger.Info("attachment deleted", "attachment_id", id, "user_id", caller.ID)
	return nil
}

func (s *Service) sign(ctx context.Context, a *Attachment) {
	url, err := s.storage.PresignGet(ctx, a.File, a.Filename, DownloadURLTTL)
	if err != nil {
		s.logger.Warn("failed to presign attachment", "attachment_id", a.ID, "error", err)
		return
	}
	a.URL = url
}
