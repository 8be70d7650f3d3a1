package enrollment

import (
	"context"
	"net/url"

	courseModel "akademi/internal/model/course"
	enrollmentModel "akademi/internal/model/enrollment"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/internal/query"
	"akademi/internal/validation"
	"akademi/pkg/response"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var listSchema = &query.Schema{
	SortFields:  map[string]string{"createdAt": "created_at"},
	DefaultSort: "-createdAt",
}

var rosterSchema = &query.Schema{
	SortFields: map[string]string{
		"course":    "courses.title",
		"name":      "users.name",
		"createdAt": "enrollments.created_at",
	},
	DefaultSort:   "course",
	SearchColumns: []string{"users.name", "users.email", "courses.title"},
}

var (
	errCourseNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("course not found"),
	)
	errEnrollmentNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("enrollment not found"),
	)
)

type EnrollmentService struct {
	db   *gorm.DB
	repo *EnrollmentRepository
}

func NewEnrollmentService(db *gorm.DB, repo *EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{db: db, repo: repo}
}

// Enroll 学生选课
// 先按快照做授权与名额检查，再由存储层的原子条件更新最终裁决
func (s *EnrollmentService) Enroll(ctx context.Context, actor policy.Actor, req EnrollRequest) (*enrollmentModel.View, *response.BusinessError) {
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	c, bizErr := s.findCourse(ctx, req.CourseID)
	if bizErr != nil {
		return nil, bizErr
	}

	target := policy.Target{OwnerID: actor.ID, Enrolled: c.EnrolledCount, Capacity: c.Capacity}
	if actor.IsStudent() {
		exists, err := s.repo.Exists(ctx, actor.ID, c.ID)
		if err != nil {
			return nil, response.NewInternalError(err)
		}
		target.Exists = exists
	}
	if bizErr := policy.Authorize(actor, policy.ResourceEnrollment, policy.ActionCreate, target).Err(); bizErr != nil {
		return nil, bizErr
	}

	e, err := s.repo.Enroll(ctx, actor.ID, c.ID)
	if err != nil {
		return nil, enrollError(err)
	}
	e.Course = c
	v := e.View()
	return &v, nil
}

// enrollError 存储层的选课错误转换为与授权检查一致的业务错误
func enrollError(err error) *response.BusinessError {
	switch {
	case errors.Is(err, ErrAlreadyEnrolled):
		return policy.Deny(policy.ReasonAlreadyExists, "you are already enrolled in this course").Err()
	case errors.Is(err, ErrCourseFull):
		return policy.Deny(policy.ReasonCapacityExceeded, "no seats available").Err()
	case errors.Is(err, ErrCourseNotFound):
		return errCourseNotFound
	}
	return response.NewInternalError(err)
}

// Cancel 学生取消自己的选课
func (s *EnrollmentService) Cancel(ctx context.Context, actor policy.Actor, id uint) *response.BusinessError {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkg.IsNotFound(err) {
			return errEnrollmentNotFound
		}
		return response.NewInternalError(err)
	}
	if bizErr := policy.Authorize(actor, policy.ResourceEnrollment, policy.ActionDelete, policy.Target{OwnerID: e.StudentID}).Err(); bizErr != nil {
		return bizErr
	}

	if err := s.repo.Cancel(ctx, e); err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return errEnrollmentNotFound
		}
		return response.NewInternalError(err)
	}
	return nil
}

// ListByStudent 学生的选课，本人或超级管理员可见
func (s *EnrollmentService) ListByStudent(ctx context.Context, actor policy.Actor, studentID uint, values url.Values) ([]enrollmentModel.View, response.Pagination, *response.BusinessError) {
	d, bizErr := listSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceEnrollment, policy.ActionListByStudent, policy.Target{OwnerID: studentID}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	items, total, err := s.repo.ListByStudent(ctx, studentID, d)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}
	return views(items), query.NewPagination(total, d), nil
}

// ListByCourse 课程的选课学生，仅授课教师可见
func (s *EnrollmentService) ListByCourse(ctx context.Context, actor policy.Actor, courseID uint, values url.Values) ([]enrollmentModel.View, response.Pagination, *response.BusinessError) {
	d, bizErr := listSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	c, bizErr := s.findCourse(ctx, courseID)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceEnrollment, policy.ActionListByCourse, policy.Target{OwnerID: c.TeacherID}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	items, total, err := s.repo.ListByCourse(ctx, courseID, d)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}
	return views(items), query.NewPagination(total, d), nil
}

// Roster 教师名下所有课程的学生及成绩
func (s *EnrollmentService) Roster(ctx context.Context, actor policy.Actor, values url.Values) ([]enrollmentModel.RosterEntry, response.Pagination, *response.BusinessError) {
	d, bizErr := rosterSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceEnrollment, policy.ActionRoster, policy.Target{}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	entries, total, err := s.repo.Roster(ctx, actor.ID, d)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}
	if entries == nil {
		entries = []enrollmentModel.RosterEntry{}
	}
	return entries, query.NewPagination(total, d), nil
}

func (s *EnrollmentService) findCourse(ctx context.Context, id uint) (*courseModel.Course, *response.BusinessError) {
	var c courseModel.Course
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if pkg.IsNotFound(err) {
			return nil, errCourseNotFound
		}
		return nil, response.NewInternalError(errors.Wrapf(err, "find course %d", id))
	}
	return &c, nil
}

func views(items []enrollmentModel.Enrollment) []enrollmentModel.View {
	out := make([]enrollmentModel.View, len(items))
	for i := range items {
		out[i] = items[i].View()
	}
	return out
}
