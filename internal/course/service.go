package course

import (
	"context"
	"net/url"

	courseModel "akademi/internal/model/course"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/internal/query"
	"akademi/internal/validation"
	"akademi/pkg/response"

	"github.com/pkg/errors"
)

var listSchema = &query.Schema{
	SortFields: map[string]string{
		"title":     "title",
		"price":     "price",
		"capacity":  "capacity",
		"level":     "level",
		"createdAt": "created_at",
	},
	DefaultSort: "-createdAt",
	Filters: map[string]query.Filter{
		"category": {Column: "category"},
		"level":    {Column: "level", Allowed: courseModel.Levels},
	},
	SearchColumns: []string{"title", "description"},
}

var (
	errCourseNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("course not found"),
	)
	errTitleTaken = response.NewBusinessError(
		response.WithErrorCode(response.AlreadyExists),
		response.WithErrorMessage("a course with this title already exists"),
	)
)

type CourseService struct {
	repo *CourseRepository
}

func NewCourseService(repo *CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

// List 课程列表，所有已认证用户可见
func (s *CourseService) List(ctx context.Context, actor policy.Actor, values url.Values) ([]courseModel.View, response.Pagination, *response.BusinessError) {
	return s.list(ctx, actor, values, policy.ActionList)
}

// ListMine 当前教师自己的课程
func (s *CourseService) ListMine(ctx context.Context, actor policy.Actor, values url.Values) ([]courseModel.View, response.Pagination, *response.BusinessError) {
	return s.list(ctx, actor, values, policy.ActionListOwn)
}

func (s *CourseService) list(ctx context.Context, actor policy.Actor, values url.Values, action policy.Action) ([]courseModel.View, response.Pagination, *response.BusinessError) {
	d, bizErr := listSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceCourse, action, policy.Target{}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	var teacherID uint
	if action == policy.ActionListOwn {
		teacherID = actor.ID
	}
	courses, total, err := s.repo.List(ctx, d, teacherID)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}

	views := make([]courseModel.View, len(courses))
	for i := range courses {
		views[i] = courses[i].View()
	}
	return views, query.NewPagination(total, d), nil
}

func (s *CourseService) Get(ctx context.Context, actor policy.Actor, id uint) (*courseModel.View, *response.BusinessError) {
	c, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return nil, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceCourse, policy.ActionRead, policy.Target{OwnerID: c.TeacherID}).Err(); bizErr != nil {
		return nil, bizErr
	}
	v := c.View()
	return &v, nil
}

// Create 教师创建课程，创建者即授课教师
func (s *CourseService) Create(ctx context.Context, actor policy.Actor, req CreateCourseRequest) (*courseModel.View, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceCourse, policy.ActionCreate, policy.Target{}).Err(); bizErr != nil {
		return nil, bizErr
	}

	c := req.toModel(actor.ID)
	if err := s.repo.Create(ctx, c); err != nil {
		if pkg.IsUniqueViolation(err) {
			return nil, errTitleTaken
		}
		return nil, response.NewInternalError(err)
	}
	return s.Get(ctx, actor, c.ID)
}

// Update 只有授课教师可以修改
func (s *CourseService) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateCourseRequest) (*courseModel.View, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	c, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return nil, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceCourse, policy.ActionUpdate, policy.Target{OwnerID: c.TeacherID}).Err(); bizErr != nil {
		return nil, bizErr
	}

	if err := s.repo.Update(ctx, id, req.updates()); err != nil {
		switch {
		case errors.Is(err, ErrCapacityBelowEnrolled):
			return nil, validation.Field("capacity", "capacity cannot be lower than the number of enrolled students")
		case pkg.IsUniqueViolation(err):
			return nil, errTitleTaken
		case pkg.IsNotFound(err):
			return nil, errCourseNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return s.Get(ctx, actor, id)
}

// Delete 只有授课教师可以删除；仍有选课或成绩时拒绝
func (s *CourseService) Delete(ctx context.Context, actor policy.Actor, id uint) *response.BusinessError {
	c, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceCourse, policy.ActionDelete, policy.Target{OwnerID: c.TeacherID}).Err(); bizErr != nil {
		return bizErr
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrCourseInUse):
			return response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("cannot delete a course that has enrollments or qualitations"),
			)
		case pkg.IsNotFound(err):
			return errCourseNotFound
		}
		return response.NewInternalError(err)
	}
	return nil
}

func (s *CourseService) find(ctx context.Context, id uint) (*courseModel.Course, *response.BusinessError) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errCourseNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return c, nil
}
