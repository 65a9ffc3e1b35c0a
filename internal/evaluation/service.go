package evaluation

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	"github.com/frahmantamala/task-management/internal/task"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Evaluation, error)
	GetByID(ctx context.Context, id int64) (*Evaluation, error)
	Create(ctx context.Context, e *Evaluation) error
}

// TaskReader resolves the evaluated task. It must return
// internal.ErrTaskNotFound for unknown ids.
type TaskReader interface {
	GetByID(ctx context.Context, id int64) (*task.Task, error)
}

type Service struct {
	repo   RepositoryAPI
	tasks  TaskReader
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tasks TaskReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tasks: tasks, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Evaluation, error) {
	evals, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err)
		return nil, internal.NewInternalError("failed to list evaluations", err)
	}
	return evals, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Evaluation, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get evaluation", "evaluation_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get evaluation", err)
	}
	if e == nil {
		return nil, internal.ErrEvaluationNotFound
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateEvaluationDTO, caller *internal.Principal) (*Evaluation, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, dto.TaskID); err != nil {
		return nil, err
	}

	e := &Evaluation{
		TaskID:           dto.TaskID,
		EvaluatorID:      caller.ID,
		Difficulty:       dto.Difficulty,
		PerformanceScore: dto.PerformanceScore,
		Feedback:         dto.Feedback,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create evaluation", "task_id", dto.TaskID, "error", err)
		return nil, internal.NewInternalError("failed to create evaluation", err)
	}
	s.logger.Info("task evaluated",
		"evaluation_id", e.ID,
		"task_id", e.TaskID,
		"evaluator_id", caller.ID,
		"score", e.PerformanceScore)

	return s.GetByID(ctx, e.ID)
}
