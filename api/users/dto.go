package users

type CreateUserBody struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=employee manager hr admin"`
	DepartmentID *int64 `json:"department_id"`
}

type CreateUserParams struct {
	Email        string
	Password     string
	Role         string
	DepartmentID *int64
}

type LoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
