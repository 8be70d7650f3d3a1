package auth

import (
	"context"
	"crypto/subtle"
	"net/url"
	"strings"
	"time"

	userModel "akademi/internal/model/user"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/internal/user"
	"akademi/internal/validation"
	"akademi/pkg/email"
	"akademi/pkg/logger"
	"akademi/pkg/response"

	"github.com/pkg/errors"
)

var (
	errEmailTaken = response.NewBusinessError(
		response.WithErrorCode(response.AlreadyExists),
		response.WithErrorMessage("email already registered"),
	)
	errInvalidCredentials = response.NewBusinessError(
		response.WithErrorCode(response.Unauthorized),
		response.WithErrorMessage("invalid email or password"),
	)
	errInvalidRefreshToken = response.NewBusinessError(
		response.WithErrorCode(response.Unauthorized),
		response.WithErrorMessage("invalid or expired refresh token"),
	)
	errInvalidResetToken = response.NewBusinessError(
		response.WithErrorCode(response.InvalidParameter),
		response.WithErrorMessage("invalid or expired reset token"),
	)
	errUserNotFound = response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("user not found"),
	)
	errSuperadminKey = response.NewBusinessError(
		response.WithErrorCode(response.Forbidden),
		response.WithErrorMessage("not authorized"),
	)
)

// Options AuthService 的依赖
type Options struct {
	Tokens *pkg.TokenManager
	// Refresh 为 nil 时不签发刷新令牌
	Refresh *RefreshTokenRepository
	Resets  ResetTokenStore
	Mailer  email.Sender
	Logger  *logger.Logger

	MailFrom    string
	FrontendURL string
	ResetTTL    time.Duration
	// SuperadminSecret 为空时禁用超级管理员初始化接口
	SuperadminSecret string
}

type AuthService struct {
	users *user.UserRepository
	opts  Options
}

func NewAuthService(users *user.UserRepository, opts Options) *AuthService {
	if opts.Resets == nil {
		opts.Resets = NewMemoryResetTokenStore()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.ResetTTL == 0 {
		opts.ResetTTL = time.Hour
	}
	return &AuthService{users: users, opts: opts}
}

// RefreshEnabled 是否签发刷新令牌
func (s *AuthService) RefreshEnabled() bool {
	return s.opts.Refresh != nil
}

// Register 自助注册学生或教师
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*userModel.User, *response.BusinessError) {
	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}
	return s.createUser(ctx, req.Name, req.Email, req.Password, userModel.Role(req.Role), req.DNI)
}

// CreateSuperadmin 凭 X-Superadmin-Key 创建超级管理员
func (s *AuthService) CreateSuperadmin(ctx context.Context, key string, req CreateSuperadminRequest) (*userModel.User, *response.BusinessError) {
	secret := s.opts.SuperadminSecret
	if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
		return nil, errSuperadminKey
	}

	req.normalize()
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}
	return s.createUser(ctx, req.Name, req.Email, req.Password, userModel.RoleSuperadmin, req.DNI)
}

func (s *AuthService) createUser(ctx context.Context, name, mail, password string, role userModel.Role, dni *string) (*userModel.User, *response.BusinessError) {
	hash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, response.NewInternalError(err)
	}
	u := &userModel.User{
		Name:         name,
		Email:        mail,
		PasswordHash: hash,
		Role:         role,
		DNI:          dni,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if pkg.IsUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, response.NewInternalError(err)
	}
	return u, nil
}

// Login 邮箱密码登录
// 用户不存在和密码错误返回同一个错误
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, *response.BusinessError) {
	req.Email = user.NormalizeEmail(req.Email)
	if bizErr := validation.Struct(req); bizErr != nil {
		return nil, bizErr
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, response.NewInternalError(err)
	}
	if !pkg.CheckPassword(u.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh 用刷新令牌换新的访问令牌，旧刷新令牌随即失效
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, *response.BusinessError) {
	if s.opts.Refresh == nil || refreshToken == "" {
		return nil, errInvalidRefreshToken
	}

	userID, err := s.opts.Refresh.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, errInvalidRefreshToken
		}
		return nil, response.NewInternalError(err)
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errInvalidRefreshToken
		}
		return nil, response.NewInternalError(err)
	}
	return s.issue(ctx, u)
}

// Logout 撤销刷新令牌；访问令牌由客户端丢弃
func (s *AuthService) Logout(ctx context.Context, refreshToken string) *response.BusinessError {
	if s.opts.Refresh == nil || refreshToken == "" {
		return nil
	}
	if err := s.opts.Refresh.Delete(ctx, refreshToken); err != nil {
		return response.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *userModel.User) (*LoginResponse, *response.BusinessError) {
	token, err := s.opts.Tokens.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, response.NewInternalError(errors.Wrap(err, "sign access token"))
	}
	res := &LoginResponse{Token: token, User: u}

	if s.opts.Refresh != nil {
		refreshToken, err := pkg.GenerateRandomToken()
		if err != nil {
			return nil, response.NewInternalError(err)
		}
		if err := s.opts.Refresh.Create(ctx, refreshToken, u.ID); err != nil {
			return nil, response.NewInternalError(err)
		}
		res.refreshToken = refreshToken
	}
	return res, nil
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, actor policy.Actor) (*userModel.User, *response.BusinessError) {
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, errUserNotFound
		}
		return nil, response.NewInternalError(err)
	}
	return u, nil
}

// RecoverPassword 生成一次性重置令牌并发送重置邮件
func (s *AuthService) RecoverPassword(ctx context.Context, req RecoverPasswordRequest) *response.BusinessError {
	req.Email = user.NormalizeEmail(req.Email)
	if bizErr := validation.Struct(req); bizErr != nil {
		return bizErr
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if pkg.IsNotFound(err) {
			return errUserNotFound
		}
		return response.NewInternalError(err)
	}

	token, err := pkg.GenerateRandomToken()
	if err != nil {
		return response.NewInternalError(err)
	}
	if err := s.opts.Resets.Save(ctx, token, u.ID, s.opts.ResetTTL); err != nil {
		return response.NewInternalError(err)
	}

	msg, err := email.PasswordResetMessage(s.opts.MailFrom, u.Email, email.PasswordResetData{
		Name:          u.Name,
		ResetLink:     s.resetLink(token),
		ExpireMinutes: int(s.opts.ResetTTL.Minutes()),
	})
	if err != nil {
		return response.NewInternalError(errors.Wrap(err, "render reset email"))
	}
	if err := s.opts.Mailer.Send(ctx, msg); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("could not send the recovery email"),
			response.WithError(errors.Wrap(err, "send reset email")),
		)
	}
	s.opts.Logger.Info("password reset requested", logger.Fields{"user_id": u.ID})
	return nil
}

func (s *AuthService) resetLink(token string) string {
	return strings.TrimRight(s.opts.FrontendURL, "/") + "/reset-password/" + url.PathEscape(token)
}

// ResetPassword 消费重置令牌并设置新密码，同时撤销该用户的所有刷新令牌
func (s *AuthService) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) *response.BusinessError {
	if bizErr := validation.Struct(req); bizErr != nil {
		return bizErr
	}

	userID, err := s.opts.Resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return errInvalidResetToken
		}
		return response.NewInternalError(err)
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if pkg.IsNotFound(err) {
			return errUserNotFound
		}
		return response.NewInternalError(err)
	}
	if validation.TooSimilar(req.Password, u.Name, u.Email) {
		return validation.Field("password", "password cannot be similar to your name or email")
	}

	hash, err := pkg.HashPassword(req.Password)
	if err != nil {
		return response.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return response.NewInternalError(err)
	}

	if s.opts.Refresh != nil {
		if err := s.opts.Refresh.DeleteAllByUserID(ctx, u.ID); err != nil {
			s.opts.Logger.Error("revoke refresh tokens after password reset", err, logger.Fields{"user_id": u.ID})
		}
	}
	return nil
}
