package evaluation

import (
	"time"

	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
)

type Evaluation struct {
	ID               int64               `gorm:"primaryKey"`
	TaskID           int64               `gorm:"column:task_id;not null;index"`
	Task             *taskDatamodel.Task `gorm:"foreignKey:TaskID"`
	EvaluatorID      int64               `gorm:"column:evaluator_id;not null;index"`
	Evaluator        *userDatamodel.User `gorm:"foreignKey:EvaluatorID"`
	Difficulty       string              `gorm:"column:difficulty"`
	PerformanceScore int                 `gorm:"column:performance_score;not null"`
	Feedback         string              `gorm:"column:feedback"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Evaluation) TableName() string {
	return "tasks_taskevaluation"
}
