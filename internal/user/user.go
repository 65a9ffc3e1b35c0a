package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	Rank           string    `json:"rank"`
	DepartmentID   *int64    `json:"department_id"`
	DepartmentName string    `json:"department_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListFilter struct {
	DepartmentID *int64
}

// FullName follows Korean order: family name first, no separator.
func FullName(lastName, firstName string) string {
	return lastName + firstName
}

func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     FullName(u.LastName, u.FirstName),
		Role:         u.Role,
		Rank:         u.Rank,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
	if u.Department != nil {
		out.DepartmentName = u.Department.Name
	}
	return out
}
