package auth

import (
	"strings"

	userModel "akademi/internal/model/user"
	"akademi/internal/user"
	"akademi/internal/validation"
)

func init() {
	validation.RegisterStructRule(validation.PasswordStructRule, RegisterRequest{}, CreateSuperadminRequest{})
}

// RegisterRequest 注册，角色只能是学生或教师，默认学生
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=3,max=50" example:"Ana Torres"`
	Email    string  `json:"email" validate:"required,email,max=100" example:"ana@example.com"`
	Password string  `json:"password" validate:"required,min=6,max=100" example:"Str0ngPass"`
	Role     string  `json:"role" validate:"omitempty,oneof=student teacher" example:"student"`
	DNI      *string `json:"dni" validate:"omitempty,dni" example:"30111222"`
}

func (r RegisterRequest) PasswordAttrs() (string, []string) {
	return r.Password, []string{r.Name, r.Email}
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = user.NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Role == "" {
		r.Role = string(userModel.RoleStudent)
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ana@example.com"`
	Password string `json:"password" validate:"required" example:"Str0ngPass"`
}

// LoginResponse 登录返回；刷新令牌只写入 cookie
type LoginResponse struct {
	Token        string          `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User         *userModel.User `json:"user"`
	refreshToken string
}

type RecoverPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"ana@example.com"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=100" example:"N3wPassword"`
}

// CreateSuperadminRequest 初始化超级管理员
type CreateSuperadminRequest struct {
	Name     string  `json:"name" validate:"required,min=3,max=50" example:"Root Admin"`
	Email    string  `json:"email" validate:"required,email,max=100" example:"root@example.com"`
	Password string  `json:"password" validate:"required,min=6,max=100" example:"Str0ngPass"`
	DNI      *string `json:"dni" validate:"omitempty,dni" example:"30111222"`
}

func (r CreateSuperadminRequest) PasswordAttrs() (string, []string) {
	return r.Password, []string{r.Name, r.Email}
}

func (r *CreateSuperadminRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = user.NormalizeEmail(r.Email)
}
