package qualitation

import (
	"context"

	"akademi/internal/model/enrollment"
	qualitationModel "akademi/internal/model/qualitation"
	"akademi/internal/query"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type QualitationRepository struct {
	db *gorm.DB
}

func NewQualitationRepository(db *gorm.DB) *QualitationRepository {
	return &QualitationRepository{db: db}
}

// FindByID 查询成绩及所属课程，鉴权需要课程的授课教师
func (r *QualitationRepository) FindByID(ctx context.Context, id uint) (*qualitationModel.Qualitation, error) {
	var q qualitationModel.Qualitation
	if err := r.db.WithContext(ctx).Preload("Course").Preload("Student").First(&q, id).Error; err != nil {
		return nil, errors.Wrapf(err, "find qualitation %d", id)
	}
	return &q, nil
}

// Exists 该学生在该课程是否已有成绩
func (r *QualitationRepository) Exists(ctx context.Context, studentID, courseID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&qualitationModel.Qualitation{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, errors.Wrap(err, "check qualitation")
}

// Enrolled 只能给选了该课程的学生打分
func (r *QualitationRepository) Enrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&enrollment.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, errors.Wrap(err, "check enrollment")
}

func (r *QualitationRepository) Create(ctx context.Context, q *qualitationModel.Qualitation) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(q).Error, "create qualitation")
}

func (r *QualitationRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&qualitationModel.Qualitation{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update qualitation %d", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "update qualitation %d", id)
	}
	return nil
}

func (r *QualitationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&qualitationModel.Qualitation{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete qualitation %d", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "delete qualitation %d", id)
	}
	return nil
}

// ListByStudent 学生的成绩，teacherID 不为 0 时只返回该教师课程内的成绩
func (r *QualitationRepository) ListByStudent(ctx context.Context, studentID, teacherID uint, d query.Descriptor) ([]qualitationModel.Qualitation, int64, error) {
	var (
		items []qualitationModel.Qualitation
		total int64
	)
	scope := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&qualitationModel.Qualitation{}).Where("qualitations.student_id = ?", studentID)
		if teacherID != 0 {
			db = db.Where("qualitations.course_id IN (?)",
				r.db.Table("courses").Select("id").Where("teacher_id = ?", teacherID))
		}
		return d.Where(db)
	}

	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count qualitations")
	}
	if err := d.Paginate(scope()).Preload("Course").Find(&items).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list qualitations")
	}
	return items, total, nil
}
