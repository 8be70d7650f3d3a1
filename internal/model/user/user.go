package user

import "time"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Email        string    `gorm:"column:email;type:varchar(100);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null;default:'student';index" json:"role"`
	DNI          *string   `gorm:"column:dni;type:varchar(10)" json:"dni,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Summary 嵌入到课程、选课等返回中的简要信息
type Summary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() *Summary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
