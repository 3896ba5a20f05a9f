package dto

import (
	"anoa.com/educonnect/internal/entity"
)

type LoginInput struct {
	// Identifier is a username or a student number.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RegisterInput struct {
	StudentNumber   string `json:"student_number" binding:"required,max=20"`
	Name            string `json:"name" binding:"required,max=100"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
	Role        string       `json:"role"`
}
