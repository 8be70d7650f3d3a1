package enrollment

import (
	"time"

	"akademi/internal/model/course"
	"akademi/internal/model/user"
)

// Enrollment 学生选课记录，(student_id, course_id) 唯一
type Enrollment struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StudentID uint           `gorm:"column:student_id;not null;uniqueIndex:idx_enrollment_student_course" json:"studentId"`
	CourseID  uint           `gorm:"column:course_id;not null;uniqueIndex:idx_enrollment_student_course;index" json:"courseId"`
	Student   *user.User     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course    *course.Course `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// View 对外返回结构
type View struct {
	Enrollment
	Student *user.Summary   `json:"student,omitempty"`
	Course  *course.Summary `json:"course,omitempty"`
}

func (e *Enrollment) View() View {
	return View{
		Enrollment: *e,
		Student:    e.Student.Summary(),
		Course:     e.Course.Summary(),
	}
}

// RosterEntry 教师名下学生名单中的一行，附带成绩
type RosterEntry struct {
	EnrollmentID  uint     `gorm:"column:enrollment_id" json:"enrollmentId"`
	StudentID     uint     `gorm:"column:student_id" json:"studentId"`
	Name          string   `gorm:"column:name" json:"name"`
	Email         string   `gorm:"column:email" json:"email"`
	DNI           *string  `gorm:"column:dni" json:"dni,omitempty"`
	CourseID      uint     `gorm:"column:course_id" json:"courseId"`
	CourseTitle   string   `gorm:"column:course_title" json:"course"`
	Grade         *float64 `gorm:"column:grade" json:"grade"`
	Feedback      *string  `gorm:"column:feedback" json:"feedback"`
	QualitationID *uint    `gorm:"column:qualitation_id" json:"qualId"`
}
