package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/task-management/internal/auth"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByUsername(ctx context.Context, username string) (*auth.UserCredentials, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *Repository) GetCredentialsByID(ctx context.Context, id int64) (*auth.UserCredentials, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, cond string, arg interface{}) (*auth.UserCredentials, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.UserCredentials{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Role:         row.Role,
		Rank:         row.Rank,
		DepartmentID: row.DepartmentID,
		IsActive:     row.IsActive,
	}, nil
}
