package postgres

import (
	"context"
	"errors"

	evaluationDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/evaluation"
	"github.com/frahmantamala/task-management/internal/evaluation"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) evaluation.RepositoryAPI {
	return &EvaluationRepository{db: db}
}

func (r *EvaluationRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Evaluator").
		Preload("Task").
		Preload("Task.Assignee").
		Preload("Task.Reporter").
		Preload("Task.Department")
}

func (r *EvaluationRepository) List(ctx context.Context, filter evaluation.ListFilter) ([]*evaluation.Evaluation, error) {
	q := r.query(ctx)
	if filter.TaskID != nil {
		q = q.Where("task_id = ?", *filter.TaskID)
	}
	if filter.EvaluatorID != nil {
		q = q.Where("evaluator_id = ?", *filter.EvaluatorID)
	}

	var rows []evaluationDatamodel.Evaluation
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*evaluation.Evaluation, 0, len(rows))
	for i := range rows {
		out = append(out, evaluation.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id int64) (*evaluation.Evaluation, error) {
	var row evaluationDatamodel.Evaluation
	if err := r.query(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return evaluation.FromDataModel(&row), nil
}

func (r *EvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	row := evaluation.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}
