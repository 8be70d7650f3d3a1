package course

import (
	"time"

	"akademi/internal/model/user"
)

type Level string

const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels 全部难度，顺序即展示顺序
var Levels = []string{string(LevelBasic), string(LevelIntermediate), string(LevelAdvanced)}

const (
	DefaultCategory = "General"
	DefaultCapacity = 10
)

// Course 课程
// EnrolledCount 是已占用名额，只通过条件更新修改，始终满足 0 <= EnrolledCount <= Capacity
type Course struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title         string     `gorm:"column:title;type:varchar(100);not null;uniqueIndex" json:"title"`
	Description   string     `gorm:"column:description;type:varchar(200);not null" json:"description"`
	Category      string     `gorm:"column:category;type:varchar(50);not null;default:'General';index" json:"category"`
	Level         Level      `gorm:"column:level;type:varchar(20);not null;index" json:"level"`
	Price         float64    `gorm:"column:price;not null;default:0" json:"price"`
	Capacity      int        `gorm:"column:capacity;not null;default:10" json:"capacity"`
	EnrolledCount int        `gorm:"column:enrolled_count;not null;default:0" json:"enrolledCount"`
	TeacherID     uint       `gorm:"column:teacher_id;not null;index" json:"teacherId"`
	Teacher       *user.User `gorm:"foreignKey:TeacherID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

// SeatsLeft 剩余名额
func (c *Course) SeatsLeft() int {
	if left := c.Capacity - c.EnrolledCount; left > 0 {
		return left
	}
	return 0
}

// View 对外返回的课程结构，带授课教师简要信息
type View struct {
	Course
	SeatsLeft int           `json:"seatsLeft"`
	Teacher   *user.Summary `json:"teacher,omitempty"`
}

func (c *Course) View() View {
	return View{
		Course:    *c,
		SeatsLeft: c.SeatsLeft(),
		Teacher:   c.Teacher.Summary(),
	}
}

// Summary 嵌入到选课、成绩中的简要信息
type Summary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func (c *Course) Summary() *Summary {
	if c == nil || c.ID == 0 {
		return nil
	}
	return &Summary{ID: c.ID, Title: c.Title}
}
