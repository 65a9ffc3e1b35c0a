package auth

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the user block returned alongside a fresh access token.
type UserSummary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	Rank         string `json:"rank"`
	DepartmentID *int64 `json:"department_id"`
}

type LoginResponse struct {
	Access string      `json:"access"`
	User   UserSummary `json:"user"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func summaryFromCredentials(u *UserCredentials) UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.LastName + u.FirstName,
		Role:         u.Role,
		Rank:         u.Rank,
		DepartmentID: u.DepartmentID,
	}
}
