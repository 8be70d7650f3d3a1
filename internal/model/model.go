package model

import (
	"fmt"

	"akademi/internal/model/course"
	"akademi/internal/model/enrollment"
	"akademi/internal/model/qualitation"
	"akademi/internal/model/user"

	"gorm.io/gorm"
)

// GetModels 返回所有需要迁移的模型，被引用的表在前
func GetModels() []interface{} {
	return []interface{}{
		&user.User{},
		&course.Course{},
		&enrollment.Enrollment{},
		&qualitation.Qualitation{},
	}
}

func InitTable(db *gorm.DB) error {
	if err := db.AutoMigrate(GetModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
