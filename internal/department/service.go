package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Department, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByCode(ctx context.Context, code string) (*Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
	MemberCounts(ctx context.Context) (map[int64]int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Department, error) {
	departments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	return departments, nil
}

func (s *Service) Tree(ctx context.Context) ([]*TreeNode, error) {
	departments, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	members, err := s.repo.MemberCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count members", err)
	}
	return BuildTree(departments, members), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get department", err)
	}
	if d == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return d, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateDepartmentDTO) (*Department, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, 0, dto.ParentID); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, 0, dto.Code); err != nil {
		return nil, err
	}

	d := &Department{Name: dto.Name, Code: dto.Code, ParentID: dto.ParentID}
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("failed to create department", "code", dto.Code, "error", err)
		return nil, internal.NewInternalError("failed to create department", err)
	}
	s.logger.Info("department created", "department_id", d.ID, "code", d.Code)
	return d, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto *UpdateDepartmentDTO) (*Department, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, dto.ParentID); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, id, dto.Code); err != nil {
		return nil, err
	}

	existing.Name = dto.Name
	existing.Code = dto.Code
	existing.ParentID = dto.ParentID
	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update department", "department_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update department", err)
	}
	return existing, nil
}

// Delete removes the department. Child teams become top level and members
// lose their department.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete department", "department_id", id, "error", err)
		return internal.NewInternalError("failed to delete department", err)
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

func (s *Service) checkParent(ctx context.Context, id int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}

	v := validation.NewValidator()
	v.Field("parent_id", *parentID).Custom(func(value interface{}) *internal.AppError {
		if id != 0 && value.(int64) == id {
			return internal.NewValidationFieldError("parent_id", "department cannot be its own parent", internal.ErrCodeInvalidParent)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}

	parent, err := s.repo.GetByID(ctx, *parentID)
	if err != nil {
		return internal.NewInternalError("failed to get parent department", err)
	}
	if parent == nil {
		return internal.NewValidationFieldError("parent_id", "parent department not found", internal.ErrCodeInvalidParent)
	}
	return nil
}

func (s *Service) checkCodeFree(ctx context.Context, id int64, code string) error {
	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return internal.NewInternalError("failed to check department code", err)
	}
	if existing != nil && existing.ID != id {
		return internal.NewConflictError("department code already exists", internal.ErrCodeDuplicateCode)
	}
	return nil
}
