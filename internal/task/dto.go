package task

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateTaskDTO struct {
	Title          string              `json:"title" validate:"required,max=200"`
	Description    string              `json:"description"`
	Status         string              `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS REVIEW DONE HOLD"`
	Priority       string              `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Difficulty     string              `json:"difficulty" validate:"max=20"`
	AssigneeID     *int64              `json:"assignee"`
	DepartmentID   *int64              `json:"department"`
	StartDate      *time.Time          `json:"start_date"`
	DueDate        *time.Time          `json:"due_date"`
	EstimatedHours decimal.NullDecimal `json:"estimated_hours"`
	ActualHours    decimal.NullDecimal `json:"actual_hours"`
	IsMilestone    bool                `json:"is_milestone"`
}

// UpdateTaskDTO applies only the fields present in the request.
type UpdateTaskDTO struct {
	Title          *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string              `json:"description"`
	Status         *string              `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS REVIEW DONE HOLD"`
	Priority       *string              `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Difficulty     *string              `json:"difficulty" validate:"omitempty,max=20"`
	AssigneeID     *int64               `json:"assignee"`
	DepartmentID   *int64               `json:"department"`
	StartDate      *time.Time           `json:"start_date"`
	DueDate        *time.Time           `json:"due_date"`
	EstimatedHours *decimal.NullDecimal `json:"estimated_hours"`
	ActualHours    *decimal.NullDecimal `json:"actual_hours"`
	IsMilestone    *bool                `json:"is_milestone"`
	StatusComment  string               `json:"status_comment" validate:"max=500"`
}

type CreateCommentDTO struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CreateTimeLogDTO struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}
