package testutils

import (
	"fmt"
	"strings"

	"akademi/internal/model/course"
	"akademi/internal/model/enrollment"
	"akademi/internal/model/qualitation"
	"akademi/internal/model/user"
	"akademi/internal/pkg"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPassword 测试用户的默认明文密码
const DefaultPassword = "Secret123"

// 预先计算一次哈希，bcrypt 太慢
var defaultPasswordHash = mustHash(DefaultPassword)

func mustHash(pwd string) string {
	h, err := pkg.HashPassword(pwd)
	if err != nil {
		panic(err)
	}
	return h
}

// CreateTestUser 创建唯一邮箱的测试用户，默认角色为学生
func CreateTestUser(db *gorm.DB, opts ...UserOption) *user.User {
	uniqueID := uuid.New().String()[:8]

	testUser := &user.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("test_%s@example.com", uniqueID),
		PasswordHash: defaultPasswordHash,
		Role:         user.RoleStudent,
	}

	for _, opt := range opts {
		opt(testUser)
	}

	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test user: %v", err))
	}

	return testUser
}

// UserOption configures test user
type UserOption func(*user.User)

func WithName(name string) UserOption {
	return func(u *user.User) {
		u.Name = name
	}
}

func WithEmail(email string) UserOption {
	return func(u *user.User) {
		u.Email = strings.ToLower(email)
	}
}

func WithRole(role user.Role) UserOption {
	return func(u *user.User) {
		u.Role = role
	}
}

// WithPassword 使用指定明文密码
func WithPassword(password string) UserOption {
	return func(u *user.User) {
		u.PasswordHash = mustHash(password)
	}
}

func WithDNI(dni string) UserOption {
	return func(u *user.User) {
		u.DNI = &dni
	}
}

// CreateTestTeacher 创建教师
func CreateTestTeacher(db *gorm.DB, opts ...UserOption) *user.User {
	return CreateTestUser(db, append([]UserOption{WithRole(user.RoleTeacher)}, opts...)...)
}

// CreateTestSuperadmin 创建超级管理员
func CreateTestSuperadmin(db *gorm.DB, opts ...UserOption) *user.User {
	return CreateTestUser(db, append([]UserOption{WithRole(user.RoleSuperadmin)}, opts...)...)
}

// CreateTestCourse 创建课程，标题只含字母以满足校验规则
func CreateTestCourse(db *gorm.DB, teacherID uint, opts ...CourseOption) *course.Course {
	testCourse := &course.Course{
		Title:       "Test Course " + letters(uuid.New()),
		Description: "Test course description",
		Category:    course.DefaultCategory,
		Level:       course.LevelBasic,
		Price:       0,
		Capacity:    course.DefaultCapacity,
		TeacherID:   teacherID,
	}

	for _, opt := range opts {
		opt(testCourse)
	}

	if err := db.Create(testCourse).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test course: %v", err))
	}

	return testCourse
}

// CourseOption configures test course
type CourseOption func(*course.Course)

func WithTitle(title string) CourseOption {
	return func(c *course.Course) {
		c.Title = title
	}
}

func WithCapacity(capacity int) CourseOption {
	return func(c *course.Course) {
		c.Capacity = capacity
	}
}

func WithLevel(level course.Level) CourseOption {
	return func(c *course.Course) {
		c.Level = level
	}
}

func WithCategory(category string) CourseOption {
	return func(c *course.Course) {
		c.Category = category
	}
}

func WithPrice(price float64) CourseOption {
	return func(c *course.Course) {
		c.Price = price
	}
}

// CreateTestEnrollment 直接写入选课记录并占用一个名额
func CreateTestEnrollment(db *gorm.DB, studentID, courseID uint) *enrollment.Enrollment {
	e := &enrollment.Enrollment{StudentID: studentID, CourseID: courseID}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return tx.Model(&course.Course{}).Where("id = ?", courseID).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + 1")).Error
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create test enrollment: %v", err))
	}
	return e
}

// CreateTestQualitation 直接写入成绩
func CreateTestQualitation(db *gorm.DB, studentID, courseID uint, score float64) *qualitation.Qualitation {
	q := &qualitation.Qualitation{StudentID: studentID, CourseID: courseID, Score: score}
	if err := db.Create(q).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test qualitation: %v", err))
	}
	return q
}

// letters 把 uuid 转为纯字母，课程标题不允许数字
func letters(id uuid.UUID) string {
	var b strings.Builder
	for _, c := range id[:6] {
		b.WriteByte('a' + c%26)
	}
	return b.String()
}
