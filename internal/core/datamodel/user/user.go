package user

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
)

type User struct {
	ID           int64                           `gorm:"primaryKey"`
	Username     string                          `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string                          `gorm:"column:password_hash;not null"`
	FirstName    string                          `gorm:"column:first_name"`
	LastName     string                          `gorm:"column:last_name"`
	Email        string                          `gorm:"column:email"`
	DepartmentID *int64                          `gorm:"column:department_id;index"`
	Department   *departmentDatamodel.Department `gorm:"foreignKey:DepartmentID"`
	Role         string                          `gorm:"column:role;not null;default:EMPLOYEE"`
	Rank         string                          `gorm:"column:rank"`
	IsActive     bool                            `gorm:"column:is_active"`
	CreatedAt    time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "accounts_user"
}
