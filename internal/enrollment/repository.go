package enrollment

import (
	"context"

	"akademi/internal/model/course"
	enrollmentModel "akademi/internal/model/enrollment"
	"akademi/internal/pkg"
	"akademi/internal/query"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrAlreadyEnrolled    = errors.New("student already enrolled in course")
	ErrCourseFull         = errors.New("course has no seats left")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll 在一个事务内完成选课
// 1. 已存在 (学生, 课程) 记录时返回 ErrAlreadyEnrolled
// 2. 条件更新 enrolled_count < capacity 占用一个名额，失败返回 ErrCourseFull 或 ErrCourseNotFound
// 3. 插入选课记录，唯一键冲突视为重复选课，事务回滚会同时归还名额
// 事务内只能使用 tx，SQLite 只有一个连接
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID uint) (*enrollmentModel.Enrollment, error) {
	e := &enrollmentModel.Enrollment{StudentID: studentID, CourseID: courseID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&enrollmentModel.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyEnrolled
		}

		res := tx.Model(&course.Course{}).
			Where("id = ? AND enrolled_count < capacity", courseID).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Model(&course.Course{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrCourseNotFound
			}
			return ErrCourseFull
		}

		if err := tx.Create(e).Error; err != nil {
			if pkg.IsUniqueViolation(err) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})

	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, ErrCourseFull), errors.Is(err, ErrCourseNotFound):
		return nil, err
	default:
		return nil, errors.Wrapf(err, "enroll student %d in course %d", studentID, courseID)
	}
}

// Cancel 删除选课并归还名额
func (r *EnrollmentRepository) Cancel(ctx context.Context, e *enrollmentModel.Enrollment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&enrollmentModel.Enrollment{}, e.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEnrollmentNotFound
		}
		return tx.Model(&course.Course{}).
			Where("id = ? AND enrolled_count > 0", e.CourseID).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count - 1")).Error
	})
	if errors.Is(err, ErrEnrollmentNotFound) {
		return err
	}
	return errors.Wrapf(err, "cancel enrollment %d", e.ID)
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id uint) (*enrollmentModel.Enrollment, error) {
	var e enrollmentModel.Enrollment
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, errors.Wrapf(err, "find enrollment %d", id)
	}
	return &e, nil
}

// Exists 学生是否已选该课程
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&enrollmentModel.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, errors.Wrap(err, "check enrollment")
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uint, d query.Descriptor) ([]enrollmentModel.Enrollment, int64, error) {
	return r.list(ctx, d, "student_id = ?", studentID, "Course")
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uint, d query.Descriptor) ([]enrollmentModel.Enrollment, int64, error) {
	return r.list(ctx, d, "course_id = ?", courseID, "Student")
}

func (r *EnrollmentRepository) list(ctx context.Context, d query.Descriptor, cond string, id uint, preload string) ([]enrollmentModel.Enrollment, int64, error) {
	var (
		items []enrollmentModel.Enrollment
		total int64
	)
	scope := func() *gorm.DB {
		return d.Where(r.db.WithContext(ctx).Model(&enrollmentModel.Enrollment{}).Where(cond, id))
	}
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enrollments")
	}
	if err := d.Paginate(scope()).Preload(preload).Find(&items).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list enrollments")
	}
	return items, total, nil
}

// Roster 教师所有课程的选课学生及成绩
func (r *EnrollmentRepository) Roster(ctx context.Context, teacherID uint, d query.Descriptor) ([]enrollmentModel.RosterEntry, int64, error) {
	var (
		entries []enrollmentModel.RosterEntry
		total   int64
	)
	scope := func() *gorm.DB {
		return d.Where(r.db.WithContext(ctx).Table("enrollments").
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Joins("JOIN users ON users.id = enrollments.student_id").
			Where("courses.teacher_id = ?", teacherID))
	}

	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count roster")
	}

	err := d.Paginate(scope()).
		Select(`enrollments.id AS enrollment_id,
			users.id AS student_id, users.name AS name, users.email AS email, users.dni AS dni,
			courses.id AS course_id, courses.title AS course_title,
			qualitations.score AS grade, qualitations.feedback AS feedback, qualitations.id AS qualitation_id`).
		Joins("LEFT JOIN qualitations ON qualitations.student_id = enrollments.student_id AND qualitations.course_id = enrollments.course_id").
		Scan(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list roster")
	}
	return entries, total, nil
}
