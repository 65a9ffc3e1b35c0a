package department

type CreateDepartmentDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Code     string `json:"code" validate:"required,max=20"`
	ParentID *int64 `json:"parent_id"`
}

type UpdateDepartmentDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Code     string `json:"code" validate:"required,max=20"`
	ParentID *int64 `json:"parent_id"`
}
