package evaluation

import (
	"time"

	evaluationDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/evaluation"
	"github.com/frahmantamala/task-management/internal/task"
)

const (
	MinScore = 1
	MaxScore = 5
)

type Evaluation struct {
	ID               int64      `json:"id"`
	TaskID           int64      `json:"task_id"`
	Task             *task.Task `json:"task"`
	EvaluatorID      int64      `json:"evaluator"`
	EvaluatorName    string     `json:"evaluator_name"`
	Difficulty       string     `json:"difficulty"`
	PerformanceScore int        `json:"performance_score"`
	Feedback         string     `json:"feedback"`
	CreatedAt        time.Time  `json:"created_at"`
}

type ListFilter struct {
	TaskID      *int64
	EvaluatorID *int64
}

func ToDataModel(e *Evaluation) *evaluationDatamodel.Evaluation {
	return &evaluationDatamodel.Evaluation{
		ID:               e.ID,
		TaskID:           e.TaskID,
		EvaluatorID:      e.EvaluatorID,
		Difficulty:       e.Difficulty,
		PerformanceScore: e.PerformanceScore,
		Feedback:         e.Feedback,
		CreatedAt:        e.CreatedAt,
	}
}

func FromDataModel(row *evaluationDatamodel.Evaluation) *Evaluation {
	e := &Evaluation{
		ID:               row.ID,
		TaskID:           row.TaskID,
		EvaluatorID:      row.EvaluatorID,
		Difficulty:       row.Difficulty,
		PerformanceScore: row.PerformanceScore,
		Feedback:         row.Feedback,
		CreatedAt:        row.CreatedAt,
	}
	if row.Task != nil {
		e.Task = task.FromDataModel(row.Task)
	}
	if row.Evaluator != nil {
		e.EvaluatorName = row.Evaluator.Username
	}
	return e
}
