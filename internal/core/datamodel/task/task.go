package task

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

type Task struct {
	ID             int64                           `gorm:"primaryKey"`
	Title          string                          `gorm:"column:title;not null"`
	Description    string                          `gorm:"column:description"`
	Status         string                          `gorm:"column:status;not null;default:TODO;index"`
	Priority       string                          `gorm:"column:priority;not null;default:MEDIUM"`
	Difficulty     string                          `gorm:"column:difficulty"`
	AssigneeID     *int64                          `gorm:"column:assignee_id;index"`
	Assignee       *userDatamodel.User             `gorm:"foreignKey:AssigneeID"`
	ReporterID     *int64                          `gorm:"column:reporter_id"`
	Reporter       *userDatamodel.User             `gorm:"foreignKey:ReporterID"`
	DepartmentID   *int64                          `gorm:"column:department_id;index"`
	Department     *departmentDatamodel.Department `gorm:"foreignKey:DepartmentID"`
	StartDate      *time.Time                      `gorm:"column:start_date"`
	DueDate        *time.Time                      `gorm:"column:due_date"`
	CompletedAt    *time.Time                      `gorm:"column:completed_at"`
	EstimatedHours decimal.NullDecimal             `gorm:"column:estimated_hours;type:numeric(6,2)"`
	ActualHours    decimal.NullDecimal             `gorm:"column:actual_hours;type:numeric(6,2)"`
	IsMilestone    bool                            `gorm:"column:is_milestone;default:false"`
	Comments       []Comment                       `gorm:"foreignKey:TaskID"`
	CreatedAt      time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks_task"
}

type Comment struct {
	ID        int64               `gorm:"primaryKey"`
	TaskID    int64               `gorm:"column:task_id;not null;index"`
	AuthorID  int64               `gorm:"column:author_id;not null"`
	Author    *userDatamodel.User `gorm:"foreignKey:AuthorID"`
	Content   string              `gorm:"column:content;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Comment) TableName() string {
	return "tasks_taskcomment"
}

type History struct {
	ID             int64               `gorm:"primaryKey"`
	TaskID         int64               `gorm:"column:task_id;not null;index"`
	ChangedByID    *int64              `gorm:"column:changed_by_id"`
	ChangedBy      *userDatamodel.User `gorm:"foreignKey:ChangedByID"`
	PreviousStatus string              `gorm:"column:previous_status"`
	NewStatus      string              `gorm:"column:new_status;not null"`
	Comment        string              `gorm:"column:comment"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (History) TableName() string {
	return "tasks_taskhistory"
}

type TimeLog struct {
	ID         int64               `gorm:"primaryKey"`
	TaskID     int64               `gorm:"column:task_id;not null;index"`
	StartTime  time.Time           `gorm:"column:start_time;not null"`
	EndTime    *time.Time          `gorm:"column:end_time"`
	LoggedByID int64               `gorm:"column:logged_by_id;not null"`
	LoggedBy   *userDatamodel.User `gorm:"foreignKey:LoggedByID"`
}

func (TimeLog) TableName() string {
	return "tasks_tasktimelog"
}
