package user

import (
	"strings"

	"akademi/internal/validation"
)

func init() {
	validation.RegisterStructRule(validation.PasswordStructRule, CreateUserRequest{}, UpdateUserRequest{})
}

// CreateUserRequest 超级管理员创建教师或超级管理员
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=3,max=50" example:"Laura Gomez"`
	Email    string  `json:"email" validate:"required,email,max=100" example:"laura@example.com"`
	Password string  `json:"password" validate:"required,min=6,max=100" example:"Str0ngPass"`
	Role     string  `json:"role" validate:"required,oneof=superadmin teacher student" example:"teacher"`
	DNI      *string `json:"dni" validate:"omitempty,dni" example:"30111222"`
}

func (r CreateUserRequest) PasswordAttrs() (string, []string) {
	return r.Password, []string{r.Name, r.Email}
}

func (r *CreateUserRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// UpdateUserRequest 只修改提供的字段
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=3,max=50"`
	Email    *string `json:"email" validate:"omitnil,email,max=100"`
	Password *string `json:"password" validate:"omitnil,min=6,max=100"`
	Role     *string `json:"role" validate:"omitnil,oneof=superadmin teacher student"`
	DNI      *string `json:"dni" validate:"omitnil,dni"`
}

func (r UpdateUserRequest) PasswordAttrs() (string, []string) {
	if r.Password == nil {
		return "", nil
	}
	var attrs []string
	if r.Name != nil {
		attrs = append(attrs, *r.Name)
	}
	if r.Email != nil {
		attrs = append(attrs, *r.Email)
	}
	return *r.Password, attrs
}

func (r *UpdateUserRequest) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		r.Email = &email
	}
	if r.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &role
	}
}

// NormalizeEmail 邮箱统一去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
