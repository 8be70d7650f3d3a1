package user

import (
	"context"

	"akademi/internal/model/course"
	"akademi/internal/model/enrollment"
	"akademi/internal/model/qualitation"
	userModel "akademi/internal/model/user"
	"akademi/internal/query"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrTeacherHasCourses 删除教师时其名下仍有课程
var ErrTeacherHasCourses = errors.New("teacher still owns courses")

// UserRepository 用户数据访问层
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*userModel.User, error) {
	var u userModel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, errors.Wrapf(err, "find user %d", id)
	}
	return &u, nil
}

// FindByEmail 根据邮箱查找用户，邮箱需已规范化为小写
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*userModel.User, error) {
	var u userModel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userModel.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(u).Error, "create user")
}

// Update 只更新 updates 中的列
func (r *UserRepository) Update(ctx context.Context, u *userModel.User, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		return errors.Wrapf(err, "update user %d", u.ID)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update password of user %d", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "update password of user %d", id)
	}
	return nil
}

// List 分页查询用户
func (r *UserRepository) List(ctx context.Context, d query.Descriptor) ([]userModel.User, int64, error) {
	var (
		users []userModel.User
		total int64
	)
	db := r.db.WithContext(ctx).Model(&userModel.User{})
	if err := d.Where(db).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	if err := d.Apply(r.db.WithContext(ctx).Model(&userModel.User{})).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}

// CountCourses 教师名下课程数
func (r *UserRepository) CountCourses(ctx context.Context, teacherID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&course.Course{}).Where("teacher_id = ?", teacherID).Count(&n).Error
	return n, errors.Wrap(err, "count teacher courses")
}

// CountStudentRecords 学生的选课数与成绩数之和
func (r *UserRepository) CountStudentRecords(ctx context.Context, studentID uint) (int64, error) {
	var enrollments, qualitations int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&enrollment.Enrollment{}).Where("student_id = ?", studentID).Count(&enrollments).Error; err != nil {
		return 0, errors.Wrap(err, "count student enrollments")
	}
	if err := db.Model(&qualitation.Qualitation{}).Where("student_id = ?", studentID).Count(&qualitations).Error; err != nil {
		return 0, errors.Wrap(err, "count student qualitations")
	}
	return enrollments + qualitations, nil
}

// Delete 删除用户
// 学生：同一事务内释放其占用的名额，删除选课和成绩
// 教师：名下仍有课程时返回 ErrTeacherHasCourses
func (r *UserRepository) Delete(ctx context.Context, u *userModel.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch u.Role {
		case userModel.RoleTeacher:
			var n int64
			if err := tx.Model(&course.Course{}).Where("teacher_id = ?", u.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrTeacherHasCourses
			}
		case userModel.RoleStudent:
			courseIDs := tx.Model(&enrollment.Enrollment{}).Select("course_id").Where("student_id = ?", u.ID)
			if err := tx.Model(&course.Course{}).
				Where("id IN (?) AND enrolled_count > 0", courseIDs).
				UpdateColumn("enrolled_count", gorm.Expr("enrolled_count - 1")).Error; err != nil {
				return err
			}
			if err := tx.Where("student_id = ?", u.ID).Delete(&enrollment.Enrollment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("student_id = ?", u.ID).Delete(&qualitation.Qualitation{}).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&userModel.User{}, u.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, ErrTeacherHasCourses) {
		return err
	}
	return errors.Wrapf(err, "delete user %d", u.ID)
}
