package dto

type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,min=2,max=100" example:"Kirt Partel"`
	Email    string `json:"email" validate:"required,email" example:"kirt@example.com"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"kirt@example.com"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponseDTO struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}
