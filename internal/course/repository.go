package course

import (
	"context"

	courseModel "akademi/internal/model/course"
	"akademi/internal/model/enrollment"
	"akademi/internal/model/qualitation"
	"akademi/internal/query"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrCapacityBelowEnrolled 新容量小于已选人数
	ErrCapacityBelowEnrolled = errors.New("capacity below enrolled count")
	// ErrCourseInUse 课程仍有选课或成绩
	ErrCourseInUse = errors.New("course has enrollments or qualitations")
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID 查询课程及授课教师
func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*courseModel.Course, error) {
	var c courseModel.Course
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&c, id).Error; err != nil {
		return nil, errors.Wrapf(err, "find course %d", id)
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *courseModel.Course) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(c).Error, "create course")
}

// List 分页查询课程，teacherID 不为 0 时只查该教师的课程
func (r *CourseRepository) List(ctx context.Context, d query.Descriptor, teacherID uint) ([]courseModel.Course, int64, error) {
	var (
		courses []courseModel.Course
		total   int64
	)
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&courseModel.Course{})
		if teacherID != 0 {
			db = db.Where("teacher_id = ?", teacherID)
		}
		return d.Where(db)
	}

	if err := scope(r.db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count courses")
	}
	if err := d.Paginate(scope(r.db.WithContext(ctx))).Preload("Teacher").Find(&courses).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list courses")
	}
	return courses, total, nil
}

// Update 更新课程
// 修改容量时以条件更新保证 enrolled_count <= capacity，不满足时返回 ErrCapacityBelowEnrolled
func (r *CourseRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx).Model(&courseModel.Course{}).Where("id = ?", id)
	capacity, capacityChange := updates["capacity"]
	if capacityChange {
		db = db.Where("enrolled_count <= ?", capacity)
	}

	res := db.Updates(updates)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update course %d", id)
	}
	if res.RowsAffected == 0 {
		if !capacityChange {
			return errors.Wrapf(gorm.ErrRecordNotFound, "update course %d", id)
		}
		// 区分课程已被删除和容量不足
		var n int64
		if err := r.db.WithContext(ctx).Model(&courseModel.Course{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return errors.Wrapf(err, "update course %d", id)
		}
		if n == 0 {
			return errors.Wrapf(gorm.ErrRecordNotFound, "update course %d", id)
		}
		return ErrCapacityBelowEnrolled
	}
	return nil
}

// Delete 删除课程，仍有选课或成绩时返回 ErrCourseInUse
func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&enrollment.Enrollment{}).Where("course_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCourseInUse
		}
		if err := tx.Model(&qualitation.Qualitation{}).Where("course_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCourseInUse
		}

		res := tx.Delete(&courseModel.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, ErrCourseInUse) {
		return err
	}
	return errors.Wrapf(err, "delete course %d", id)
}
