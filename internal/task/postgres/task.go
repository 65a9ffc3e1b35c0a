package postgres

import (
	"context"
	"errors"

	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	"github.com/frahmantamala/task-management/internal/task"
	"gorm.io/gorm"
)

// TaskRepository implements task.RepositoryAPI using GORM
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.RepositoryAPI {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Reporter").
		Preload("Department")
}

func applyFilter(q *gorm.DB, f task.ListFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *f.AssigneeID)
	}
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q
}

func (r *TaskRepository) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	var rows []taskDatamodel.Task
	err := applyFilter(r.withRelations(ctx), filter).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

// ListInRange returns tasks whose [start_date, due_date] span overlaps the
// range. A task with only one date is treated as a point.
func (r *TaskRepository) ListInRange(ctx context.Context, rng task.CalendarRange, filter task.ListFilter) ([]*task.Task, error) {
	var rows []taskDatamodel.Task
	err := applyFilter(r.withRelations(ctx), filter).
		Where("COALESCE(start_date, due_date) IS NOT NULL").
		Where("COALESCE(start_date, due_date) < ?", rng.End).
		Where("COALESCE(due_date, start_date) >= ?", rng.Start).
		Order("COALESCE(start_date, due_date) ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var row taskDatamodel.Task
	err := r.withRelations(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.Author").
		First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task.FromDataModel(&row), nil
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	row := task.ToDataModel(t)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

// Update writes every column, including cleared ones.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	row := task.ToDataModel(t)
	err := r.db.WithContext(ctx).Model(row).
		Select("title", "description", "status", "priority", "difficulty",
			"assignee_id", "department_id", "start_date", "due_date", "completed_at",
			"estimated_hours", "actual_hours", "is_milestone", "updated_at").
		Updates(row).Error
	if err != nil {
		return err
	}
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&taskDatamodel.Comment{}, &taskDatamodel.History{}, &taskDatamodel.TimeLog{},
		} {
			if err := tx.Where("task_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&taskDatamodel.Task{}, id).Error
	})
}

func (r *TaskRepository) ListComments(ctx context.Context, taskID int64) ([]*task.Comment, error) {
	var rows []taskDatamodel.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*task.Comment, 0, len(rows))
	for i := range rows {
		out = append(out, task.CommentFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *TaskRepository) CreateComment(ctx context.Context, c *task.Comment) error {
	row := &taskDatamodel.Comment{TaskID: c.TaskID, AuthorID: c.AuthorID, Content: c.Content}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TaskRepository) ListHistory(ctx context.Context, taskID int64) ([]*task.History, error) {
	var rows []taskDatamodel.History
	err := r.db.WithContext(ctx).Preload("ChangedBy").
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*task.History, 0, len(rows))
	for i := range rows {
		out = append(out, task.HistoryFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *TaskRepository) CreateHistory(ctx context.Context, h *task.History) error {
	row := &taskDatamodel.History{
		TaskID:         h.TaskID,
		ChangedByID:    h.ChangedByID,
		PreviousStatus: h.PreviousStatus,
		NewStatus:      h.NewStatus,
		Comment:        h.Comment,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	h.ID = row.ID
	h.CreatedAt = row.CreatedAt
	return nil
}

func (r *TaskRepository) ListTimeLogs(ctx context.Context, taskID int64) ([]*task.TimeLog, error) {
	var rows []taskDatamodel.TimeLog
	err := r.db.WithContext(ctx).Preload("LoggedBy").
		Where("task_id = ?", taskID).
		Order("start_time DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*task.TimeLog, 0, len(rows))
	for i := range rows {
		out = append(out, task.TimeLogFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *TaskRepository) CreateTimeLog(ctx context.Context, l *task.TimeLog) error {
	row := &taskDatamodel.TimeLog{
		TaskID:     l.TaskID,
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		LoggedByID: l.LoggedByID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	l.ID = row.ID
	return nil
}

func toDomain(rows []taskDatamodel.Task) []*task.Task {
	out := make([]*task.Task, 0, len(rows))
	for i := range rows {
		out = append(out, task.FromDataModel(&rows[i]))
	}
	return out
}
