package dto

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetRoleRequest - выбор роли после регистрации. Роль выбирается один раз.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

// AuthResponse - ответ с токеном
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
