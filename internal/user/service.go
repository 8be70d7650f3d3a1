package user

import (
	"context"
	"net/url"

	userModel "akademi/internal/model/user"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/internal/query"
	"akademi/internal/validation"
	"akademi/pkg/response"

	"github.com/pkg/errors"
)

var listSchema = &query.Schema{
	SortFields: map[string]string{
		"name":      "name",
		"email":     "email",
		"role":      "role",
		"createdAt": "created_at",
	},
	DefaultSort: "-createdAt",
	Filters: map[string]query.Filter{
		"role": {Column: "role", Allowed: []string{
			string(userModel.RoleSuperadmin), string(userModel.RoleTeacher), string(userModel.RoleStudent),
		}},
	},
	SearchColumns: []string{"name", "email"},
}

var (
	errUserNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("user not found"),
	)
	errEmailTaken = response.NewBusinessError(
		response.WithErrorCode(response.AlreadyExists),
		response.WithErrorMessage("email is already registered"),
	)
)

// UserService 用户服务层
type UserService struct {
	repo *UserRepository
}

func NewUserService(repo *UserRepository) *UserService {
	return &UserService{repo: repo}
}

// List 分页列出用户，仅超级管理员
func (s *UserService) List(ctx context.Context, actor policy.Actor, values url.Values) ([]userModel.User, response.Pagination, *response.BusinessError) {
	d, bizErr := listSchema.Parse(values)
	if bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}
	if bizErr := policy.Authorize(actor, policy.ResourceIdentity, policy.ActionList, policy.Target{}).Err(); bizErr != nil {
		return nil, response.Pagination{}, bizErr
	}

	users, total, err := s.repo.List(ctx, d)
	if err != nil {
		return nil, response.Pagination{}, response.NewInternalError(err)
	}
	return users, query.NewPagination(total, d), nil
}

// Get 查看用户；先鉴权再查询，避免探测他人账号是否存在
func (s *UserService) Get(ctx context.Context, actor policy.Actor, id uint) (*userModel.User, *response.BusinessError) {
	if bizErr := policy.Authorize(actor, policy.ResourceIdentity, policy.ActionRead, policy.Target{OwnerID: id}).Err(); bizErr != nil {
		return nil, bizErr
	}
	return s.find(ctx, id)
}

// Create 超级管理员创建教师或超级管理员
func (s *UserService) Create(ctx context.Context, actor policy.Actor, req CreateUserRequest) (*userModel.User, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}
	role := userModel.Role(req.Role)
	if bizErr := policy.Authorize(actor, policy.ResourceIdentity, policy.ActionCreate, policy.Target{Role: role}).Err(); bizErr != nil {
		return nil, bizErr
	}

	hash, err := pkg.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewInternalError(err)
	}

	u := &userModel.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		DNI:          req.DNI,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if pkg.IsUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, response.NewInternalError(err)
	}
	return u, nil
}

// Update 修改用户信息；角色只能由超级管理员修改
func (s *UserService) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateUserRequest) (*userModel.User, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	u, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return nil, bizErr
	}

	roleChange := req.Role != nil && userModel.Role(*req.Role) != u.Role
	target := policy.Target{OwnerID: u.ID, Role: u.Role, RoleChange: roleChange}
	if roleChange && actor.IsSuperadmin() {
		var err error
		switch u.Role {
		case userModel.RoleTeacher:
			target.OwnedCourses, err = s.repo.CountCourses(ctx, u.ID)
		case userModel.RoleStudent:
			target.StudentRecords, err = s.repo.CountStudentRecords(ctx, u.ID)
		}
		if err != nil {
			return nil, response.NewInternalError(err)
		}
	}
	if bizErr := policy.Authorize(actor, policy.ResourceIdentity, policy.ActionUpdate, target).Err(); bizErr != nil {
		return nil, bizErr
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != u.Email {
		updates["email"] = *req.Email
	}
	if roleChange {
		updates["role"] = userModel.Role(*req.Role)
	}
	if req.DNI != nil {
		updates["dni"] = *req.DNI
	}
	if req.Password != nil {
		name, email := u.Name, u.Email
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil {
			email = *req.Email
		}
		if validation.TooSimilar(*req.Password, name, email) {
			return nil, validation.Field("password", "password cannot be similar to your name or email")
		}
		hash, err := pkg.HashPassword(*req.Password)
		if err != nil {
			return nil, response.NewInternalError(err)
		}
		updates["password_hash"] = hash
	}

	if err := s.repo.Update(ctx, u, updates); err != nil {
		if pkg.IsUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, response.NewInternalError(err)
	}
	return s.find(ctx, id)
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, actor policy.Actor, id uint) *response.BusinessError {
	u, bizErr := s.find(ctx, id)
	if bizErr != nil {
		return bizErr
	}

	target := policy.Target{OwnerID: u.ID, Role: u.Role}
	if u.Role == userModel.RoleTeacher && actor.IsSuperadmin() {
		n, err := s.repo.CountCourses(ctx, u.ID)
		if err != nil {
			return response.NewInternalError(err)
		}
		target.OwnedCourses = n
	}
	if bizErr := policy.Authorize(actor, policy.ResourceIdentity, policy.ActionDelete, target).Err(); bizErr != nil {
		return bizErr
	}

	if err := s.repo.Delete(ctx, u); err != nil {
		if errors.Is(err, ErrTeacherHasCourses) {
			return response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("cannot delete a teacher who still owns courses"),
			)
		}
		if pkg.IsNotFound(err) {
			return errUserNotFound
		}
		return response.NewInternalError(err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id uint) (*userModel.User, *response.BusinessError) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errUserNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return u, nil
}
