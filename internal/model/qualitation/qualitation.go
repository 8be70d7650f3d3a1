package qualitation

import (
	"time"

	"akademi/internal/model/course"
	"akademi/internal/model/user"
)

// Qualitation 成绩，(student_id, course_id) 唯一
type Qualitation struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StudentID uint           `gorm:"column:student_id;not null;uniqueIndex:idx_qualitation_student_course" json:"studentId"`
	CourseID  uint           `gorm:"column:course_id;not null;uniqueIndex:idx_qualitation_student_course;index" json:"courseId"`
	Score     float64        `gorm:"column:score;not null" json:"score"`
	Feedback  string         `gorm:"column:feedback;type:varchar(500);not null;default:''" json:"feedback"`
	Student   *user.User     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course    *course.Course `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Qualitation) TableName() string {
	return "qualitations"
}

type View struct {
	Qualitation
	Student *user.Summary   `json:"student,omitempty"`
	Course  *course.Summary `json:"course,omitempty"`
}

func (q *Qualitation) View() View {
	return View{
		Qualitation: *q,
		Student:     q.Student.Summary(),
		Course:      q.Course.Summary(),
	}
}
