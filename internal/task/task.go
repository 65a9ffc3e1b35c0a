package task

import (
	"fmt"
	"time"

	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusReview     = "REVIEW"
	StatusDone       = "DONE"
	StatusHold       = "HOLD"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Task struct {
	ID                 int64               `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Status             string              `json:"status"`
	Priority           string              `json:"priority"`
	AssigneeID         *int64              `json:"assignee"`
	AssigneeName       string              `json:"assignee_name"`
	AssigneeFullName   string              `json:"assignee_full_name"`
	ReporterID         *int64              `json:"reporter"`
	ReporterName       string              `json:"reporter_name"`
	DepartmentID       *int64              `json:"department"`
	DepartmentName     string              `json:"department_name"`
	DepartmentParentID *int64              `json:"department_parent_id"`
	StartDate          *time.Time          `json:"start_date"`
	DueDate            *time.Time          `json:"due_date"`
	CompletedAt        *time.Time          `json:"completed_at"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Comments           []*Comment          `json:"comments"`
	EstimatedHours     decimal.NullDecimal `json:"estimated_hours"`
	ActualHours        decimal.NullDecimal `json:"actual_hours"`
	IsDelayed          bool                `json:"is_delayed"`
	Difficulty         string              `json:"difficulty"`
	IsMilestone        bool                `json:"is_milestone"`
}

// Delayed reports whether the due date has passed on an unfinished task.
func (t *Task) Delayed(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// SetStatus moves the task to status, stamping or clearing completed_at.
func (t *Task) SetStatus(status string, now time.Time) {
	t.Status = status
	if status == StatusDone {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
		return
	}
	t.CompletedAt = nil
}

type Comment struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task"`
	AuthorID   int64     `json:"author"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type History struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"task"`
	ChangedByID    *int64    `json:"changed_by"`
	ChangedByName  string    `json:"changed_by_name"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

type TimeLog struct {
	ID           int64      `json:"id"`
	TaskID       int64      `json:"task"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Duration     *string    `json:"duration"`
	LoggedByID   int64      `json:"logged_by"`
	LoggedByName string     `json:"logged_by_name"`
}

type ListFilter struct {
	Status       string
	Priority     string
	AssigneeID   *int64
	DepartmentID *int64
	Search       string
	Limit        int
	Offset       int
}

// CalendarRange bounds the calendar query. Tasks overlapping [Start, End) match.
type CalendarRange struct {
	Start time.Time
	End   time.Time
}

// FormatDuration renders a duration as [D ]HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	s := total % 60
	if days > 0 {
		return fmt.Sprintf("%d %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		Difficulty:     t.Difficulty,
		AssigneeID:     t.AssigneeID,
		ReporterID:     t.ReporterID,
		DepartmentID:   t.DepartmentID,
		StartDate:      t.StartDate,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		IsMilestone:    t.IsMilestone,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModel(row *taskDatamodel.Task) *Task {
	t := &Task{
		ID:             row.ID,
		Title:          row.Title,
		Description:    row.Description,
		Status:         row.Status,
		Priority:       row.Priority,
		Difficulty:     row.Difficulty,
		AssigneeID:     row.AssigneeID,
		ReporterID:     row.ReporterID,
		DepartmentID:   row.DepartmentID,
		StartDate:      row.StartDate,
		DueDate:        row.DueDate,
		CompletedAt:    row.CompletedAt,
		EstimatedHours: row.EstimatedHours,
		ActualHours:    row.ActualHours,
		IsMilestone:    row.IsMilestone,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		Comments:       make([]*Comment, 0, len(row.Comments)),
	}
	if row.Assignee != nil {
		t.AssigneeName = row.Assignee.Username
		t.AssigneeFullName = row.Assignee.LastName + row.Assignee.FirstName
	}
	if row.Reporter != nil {
		t.ReporterName = row.Reporter.Username
	}
	if row.Department != nil {
		t.DepartmentName = row.Department.Name
		t.DepartmentParentID = row.Department.ParentID
	}
	for i := range row.Comments {
		t.Comments = append(t.Comments, CommentFromDataModel(&row.Comments[i]))
	}
	return t
}

func CommentFromDataModel(row *taskDatamodel.Comment) *Comment {
	return &Comment{
		ID:         row.ID,
		TaskID:     row.TaskID,
		AuthorID:   row.AuthorID,
		AuthorName: username(row.Author),
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func HistoryFromDataModel(row *taskDatamodel.History) *History {
	return &History{
		ID:             row.ID,
		TaskID:         row.TaskID,
		ChangedByID:    row.ChangedByID,
		ChangedByName:  username(row.ChangedBy),
		PreviousStatus: row.PreviousStatus,
		NewStatus:      row.NewStatus,
		Comment:        row.Comment,
		CreatedAt:      row.CreatedAt,
	}
}

func TimeLogFromDataModel(row *taskDatamodel.TimeLog) *TimeLog {
	l := &TimeLog{
		ID:           row.ID,
		TaskID:       row.TaskID,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		LoggedByID:   row.LoggedByID,
		LoggedByName: username(row.LoggedBy),
	}
	if row.EndTime != nil {
		d := FormatDuration(row.EndTime.Sub(row.StartTime))
		l.Duration = &d
	}
	return l
}

func username(u *userDatamodel.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
