package qualitation

import (
	"context"
	"net/url"

	courseModel "akademi/internal/model/course"
	qualitationModel "akademi/internal/model/qualitation"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/internal/query"
	"akademi/internal/validation"
	"akademi/pkg/response"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var listSchema = &query.Schema{
	SortFields: map[string]string{
		"score":     "score",
		"createdAt": "created_at",
	},
	DefaultSort: "-createdAt",
}

var (
	errCourseNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("course not found"),
	)
	errQualitationNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("qualitation not found"),
	)
	errNotEnrolled = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("enrollment not found for this student and course"),
	)
)

type QualitationService struct {
	db   *gorm.DB
	repo *QualitationRepository
}

func NewQualitationService(db *gorm.DB, repo *QualitationRepository) *QualitationService {
	return &QualitationService{db: db, repo: repo}
}

// Create 授课教师给选课学生打分，每个 (学生, 课程) 只能有一条成绩
func (s *QualitationService) Create(ctx context.Context, actor policy.Actor, req CreateQualitationRequest) (*qualitationModel.View, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	c, bizErr := s.findCourse(ctx, req.CourseID)
	if bizErr != nil {
		return nil, bizErr
	}
	exists, err := s.repo.Exists(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, response.NewInternalError(err)
	}
	target := policy.Target{OwnerID: c.TeacherID, Exists: exists}
	if bizErr := policy.Authorize(actor, policy.ResourceQualitation, policy.ActionCreate, target).Err(); bizErr != nil {
		return nil, bizErr
	}

	enrolled, err := s.repo.Enrolled(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, response.NewInternalError(err)
	}
	if !enrolled {
		return nil, errNotEnrolled
	}

	q := req.toModel()
	if err := s.repo.Create(ctx, q); err != nil {
		if pkg.IsUniqueViolation(err) {
			return nil, policy.Deny(policy.ReasonAlreadyExists, "this student already has a qualitation for this course").Err()
		}
		return nil, response.NewInternalError(err)
	}
	return s.view(ctx, q.ID)
}

// Update 只有授课教师可以修改
func (s *QualitationService) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateQualitationRequest) (*qualitationModel.View, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	q, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return nil, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceQualitation, policy.ActionUpdate, ownerOf(q)).Err(); bizErr != nil {
		return nil, bizErr
	}

	if err := s.repo.Update(ctx, id, req.updates()); err != nil {
		if pkg.IsNotFound(err) {
			return nil, errQualitationNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return s.view(ctx, id)
}

func (s *QualitationService) Delete(ctx context.Context, actor policy.Actor, id uint) *response.BusinessError {
	q, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceQualitation, policy.ActionDelete, ownerOf(q)).Err(); bizErr != nil {
		return bizErr
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if pkg.IsNotFound(err) {
			return errQualitationNotFound
		}
		return response.NewInternalError(err)
	}
	return nil
}

// ListByStudent 学生的成绩
// 教师查看别人的成绩时只返回其本人课程内的记录
func (s *QualitationService) ListByStudent(ctx context.Context, actor policy.Actor, studentID uint, values url.Values) ([]qualitationModel.View, response.Pagination, *response.BusinessError) {
	d, bizErr := listSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceQualitation, policy.ActionListByStudent, policy.Target{OwnerID: studentID}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	var teacherID uint
	if actor.IsTeacher() && actor.ID != studentID {
		teacherID = actor.ID
	}
	items, total, err := s.repo.ListByStudent(ctx, studentID, teacherID, d)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}

	views := make([]qualitationModel.View, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	return views, query.NewPagination(total, d), nil
}

func ownerOf(q *qualitationModel.Qualitation) policy.Target {
	if q.Course == nil {
		return policy.Target{}
	}
	return policy.Target{OwnerID: q.Course.TeacherID}
}

func (s *QualitationService) view(ctx context.Context, id uint) (*qualitationModel.View, *response.BusinessError) {
	q, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return nil, bizErr
	}
	v := q.View()
	return &v, nil
}

func (s *QualitationService) find(ctx context.Context, id uint) (*qualitationModel.Qualitation, *response.BusinessError) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errQualitationNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return q, nil
}

func (s *QualitationService) findCourse(ctx context.Context, id uint) (*courseModel.Course, *response.BusinessError) {
	var c courseModel.Course
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if pkg.IsNotFound(err) {
			return nil, errCourseNotFound
		}
		return nil, response.NewInternalError(errors.Wrapf(err, "find course %d", id))
	}
	return &c, nil
}
