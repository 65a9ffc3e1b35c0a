package task

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	"github.com/frahmantamala/task-management/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Task, error)
	ListInRange(ctx context.Context, r CalendarRange, filter ListFilter) ([]*Task, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id int64) error

	ListComments(ctx context.Context, taskID int64) ([]*Comment, error)
	CreateComment(ctx context.Context, c *Comment) error
	ListHistory(ctx context.Context, taskID int64) ([]*History, error)
	CreateHistory(ctx context.Context, h *History) error
	ListTimeLogs(ctx context.Context, taskID int64) ([]*TimeLog, error)
	CreateTimeLog(ctx context.Context, l *TimeLog) error
}

type Service struct {
	repo     RepositoryAPI
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, internal.NewInternalError("failed to list tasks", err)
	}
	s.markDelayed(tasks...)
	return tasks, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get task", "task_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get task", err)
	}
	if t == nil {
		return nil, internal.ErrTaskNotFound
	}
	s.markDelayed(t)
	return t, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateTaskDTO, caller *internal.Principal) (*Task, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t := &Task{
		Title:          dto.Title,
		Description:    dto.Description,
		Status:         StatusTodo,
		Priority:       PriorityMedium,
		Difficulty:     dto.Difficulty,
		AssigneeID:     dto.AssigneeID,
		ReporterID:     &caller.ID,
		DepartmentID:   dto.DepartmentID,
		StartDate:      dto.StartDate,
		DueDate:        dto.DueDate,
		EstimatedHours: dto.EstimatedHours,
		ActualHours:    dto.ActualHours,
		IsMilestone:    dto.IsMilestone,
	}
	if dto.Priority != "" {
		t.Priority = dto.Priority
	}
	if dto.Status != "" {
		t.SetStatus(dto.Status, s.now())
	}
	if t.DepartmentID == nil {
		t.DepartmentID = caller.DepartmentID
	}
	if err := s.validateDates(t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create task", "error", err, "user_id", caller.ID)
		return nil, internal.NewInternalError("failed to create task", err)
	}
	s.logger.Info("task created", "task_id", t.ID, "user_id", caller.ID, "status", t.Status)

	s.publishStatusChange(ctx, t.ID, "", t.Status, caller.ID, "")
	return s.GetByID(ctx, t.ID)
}

func (s *Service) Update(ctx context.Context, id int64, dto *UpdateTaskDTO, caller *internal.Principal) (*Task, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStatus := t.Status

	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.Priority != nil {
		t.Priority = *dto.Priority
	}
	if dto.Difficulty != nil {
		t.Difficulty = *dto.Difficulty
	}
	if dto.AssigneeID != nil {
		t.AssigneeID = dto.AssigneeID
	}
	if dto.DepartmentID != nil {
		t.DepartmentID = dto.DepartmentID
	}
	if dto.StartDate != nil {
		t.StartDate = dto.StartDate
	}
	if dto.DueDate != nil {
		t.DueDate = dto.DueDate
	}
	if dto.EstimatedHours != nil {
		t.EstimatedHours = *dto.EstimatedHours
	}
	if dto.ActualHours != nil {
		t.ActualHours = *dto.ActualHours
	}
	if dto.IsMilestone != nil {
		t.IsMilestone = *dto.IsMilestone
	}
	if dto.Status != nil && *dto.Status != previousStatus {
		t.SetStatus(*dto.Status, s.now())
	}
	if err := s.validateDates(t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		s.logger.Error("failed to update task", "task_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	if t.Status != previousStatus {
		s.publishStatusChange(ctx, t.ID, previousStatus, t.Status, caller.ID, dto.StatusComment)
	}
	return s.GetByID(ctx, id)
}

// Delete is allowed for managers and for the task's reporter.
func (s *Service) Delete(ctx context.Context, id int64, caller *internal.Principal) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	isReporter := t.ReporterID != nil && *t.ReporterID == caller.ID
	if !isReporter && !caller.HasRole(internal.RoleAdmin, internal.RoleManager) {
		return internal.ErrUnauthorizedAccess
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete task", "task_id", id, "error", err)
		return internal.NewInternalError("failed to delete task", err)
	}
	s.logger.Info("task deleted", "task_id", id, "user_id", caller.ID)
	return nil
}

func (s *Service) ListComments(ctx context.Context, taskID int64) ([]*Comment, error) {
	if _, err := s.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, taskID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list comments", err)
	}
	return comments, nil
}

func (s *Service) AddComment(ctx context.Context, taskID int64, dto *CreateCommentDTO, caller *internal.Principal) (*Comment, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	c := &Comment{TaskID: taskID, AuthorID: caller.ID, AuthorName: caller.Username, Content: dto.Content}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		s.logger.Error("failed to create comment", "task_id", taskID, "error", err)
		return nil, internal.NewInternalError("failed to create comment", err)
	}
	return c, nil
}

func (s *Service) ListHistory(ctx context.Context, taskID int64) ([]*History, error) {
	if _, err := s.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, taskID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list task history", err)
	}
	return history, nil
}

func (s *Service) ListTimeLogs(ctx context.Context, taskID int64) ([]*TimeLog, error) {
	if _, err := s.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListTimeLogs(ctx, taskID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list time logs", err)
	}
	return logs, nil
}

func (s *Service) AddTimeLog(ctx context.Context, taskID int64, dto *CreateTimeLogDTO, caller *internal.Principal) (*TimeLog, error) {
	v := validation.NewValidator()
	v.Field("start_time", dto.StartTime).Required()
	v.Field("end_time", dto.EndTime).After("start_time", dto.StartTime)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	l := &TimeLog{
		TaskID:       taskID,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		LoggedByID:   caller.ID,
		LoggedByName: caller.Username,
	}
	if l.EndTime != nil {
		d := FormatDuration(l.EndTime.Sub(l.StartTime))
		l.Duration = &d
	}
	if err := s.repo.CreateTimeLog(ctx, l); err != nil {
		s.logger.Error("failed to create time log", "task_id", taskID, "error", err)
		return nil, internal.NewInternalError("failed to create time log", err)
	}
	return l, nil
}

func (s *Service) Calendar(ctx context.Context, r CalendarRange, filter ListFilter) ([]*CalendarItem, error) {
	if !r.End.After(r.Start) {
		return nil, internal.NewValidationFieldError("end", "end must be after start", internal.ErrCodeInvalidDate)
	}
	tasks, err := s.repo.ListInRange(ctx, r, filter)
	if err != nil {
		s.logger.Error("failed to load calendar", "error", err)
		return nil, internal.NewInternalError("failed to load calendar", err)
	}
	s.markDelayed(tasks...)

	items := make([]*CalendarItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, NewCalendarItem(t))
	}
	return items, nil
}

func (s *Service) CalendarICS(ctx context.Context, r CalendarRange, filter ListFilter) (string, error) {
	items, err := s.Calendar(ctx, r, filter)
	if err != nil {
		return "", err
	}
	return RenderICS(items, s.now()), nil
}

// Export renders the filtered task list as an xlsx workbook.
func (s *Service) Export(ctx context.Context, filter ListFilter) (*bytes.Buffer, string, error) {
	tasks, err := s.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	buf, err := ExportXLSX(tasks)
	if err != nil {
		s.logger.Error("failed to build task export", "error", err)
		return nil, "", internal.NewInternalError("failed to build export", err)
	}
	return buf, ExportFilename(s.now()), nil
}

func (s *Service) validateDates(t *Task) *internal.AppError {
	if t.StartDate == nil || t.DueDate == nil {
		return nil
	}
	if t.DueDate.Before(*t.StartDate) {
		return internal.NewValidationFieldError("due_date", "due_date must not be before start_date", internal.ErrCodeInvalidDate)
	}
	return nil
}

func (s *Service) markDelayed(tasks ...*Task) {
	now := s.now()
	for _, t := range tasks {
		t.IsDelayed = t.Delayed(now)
	}
}

func (s *Service) publishStatusChange(ctx context.Context, taskID int64, previous, next string, changedBy int64, comment string) {
	if s.eventBus == nil {
		return
	}
	event := events.NewTaskStatusChangedEvent(taskID, previous, next, changedBy, comment)
	if err := s.eventBus.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish task status change",
			"task_id", taskID,
			"event_id", event.EventID(),
			"error", err)
	}
}
