package course

import (
	"strings"

	courseModel "akademi/internal/model/course"
)

// CreateCourseRequest 创建课程
type CreateCourseRequest struct {
	Title       string   `json:"title" validate:"required,min=8,max=100,letters_spaces" example:"Introduccion a la Programacion"`
	Description string   `json:"description" validate:"required,min=8,max=200" example:"Fundamentos de algoritmos y estructuras"`
	Category    string   `json:"category" validate:"max=50" example:"Programming"`
	Level       string   `json:"level" validate:"omitempty,level" example:"basic"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0" example:"0"`
	Capacity    *int     `json:"capacity" validate:"omitnil,gte=1" example:"10"`
}

func (r *CreateCourseRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Level = strings.ToLower(strings.TrimSpace(r.Level))
}

// toModel 未提供的字段使用默认值
func (r *CreateCourseRequest) toModel(teacherID uint) *courseModel.Course {
	c := &courseModel.Course{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Level:       courseModel.Level(r.Level),
		Capacity:    courseModel.DefaultCapacity,
		TeacherID:   teacherID,
	}
	if c.Category == "" {
		c.Category = courseModel.DefaultCategory
	}
	if c.Level == "" {
		c.Level = courseModel.LevelBasic
	}
	if r.Price != nil {
		c.Price = *r.Price
	}
	if r.Capacity != nil {
		c.Capacity = *r.Capacity
	}
	return c
}

// UpdateCourseRequest 与创建使用同一套规则，只校验提供的字段
type UpdateCourseRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=8,max=100,letters_spaces"`
	Description *string  `json:"description" validate:"omitnil,min=8,max=200"`
	Category    *string  `json:"category" validate:"omitnil,min=1,max=50"`
	Level       *string  `json:"level" validate:"omitnil,level"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
	Capacity    *int     `json:"capacity" validate:"omitnil,gte=1"`
}

func (r *UpdateCourseRequest) normalize() {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	r.Title = trim(r.Title)
	r.Description = trim(r.Description)
	r.Category = trim(r.Category)
	if r.Level != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Level))
		r.Level = &v
	}
}

func (r *UpdateCourseRequest) updates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = *r.Title
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.Category != nil {
		m["category"] = *r.Category
	}
	if r.Level != nil {
		m["level"] = *r.Level
	}
	if r.Price != nil {
		m["price"] = *r.Price
	}
	if r.Capacity != nil {
		m["capacity"] = *r.Capacity
	}
	return m
}
