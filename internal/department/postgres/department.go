package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) List(ctx context.Context, filter department.ListFilter) ([]*department.Department, error) {
	query := r.db.WithContext(ctx)
	switch {
	case filter.ParentID != nil:
		query = query.Where("parent_id = ?", *filter.ParentID)
	case filter.TopLevel:
		query = query.Where("parent_id IS NULL")
	}

	var rows []departmentDatamodel.Department
	if err := query.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*department.Department, 0, len(rows))
	for i := range rows {
		out = append(out, department.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*department.Department, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *DepartmentRepository) first(ctx context.Context, cond string, arg interface{}) (*department.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return department.FromDataModel(&row), nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	row := department.ToDataModel(d)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*d = *department.FromDataModel(row)
	return nil
}

func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) error {
	row := department.ToDataModel(d)
	err := r.db.WithContext(ctx).Model(row).Select("name", "code", "parent_id", "updated_at").Updates(row).Error
	if err != nil {
		return err
	}
	d.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&departmentDatamodel.Department{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&userDatamodel.User{}).Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&departmentDatamodel.Department{}, id).Error
	})
}

func (r *DepartmentRepository) MemberCounts(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		DepartmentID int64
		Members      int64
	}
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Select("department_id, COUNT(*) AS members").
		Where("is_active = ? AND department_id IS NOT NULL", true).
		Group("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.DepartmentID] = row.Members
	}
	return counts, nil
}
