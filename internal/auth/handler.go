package auth

import (
	"net/http"

	"akademi/internal/dto"
	"akademi/internal/middleware"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookie = "refresh_token"
	accessCookie  = "access_token"
	// SuperadminHeader 初始化超级管理员时携带的密钥
	SuperadminHeader = "X-Superadmin-Key"
)

type AuthHandler struct {
	service *AuthService
}

func NewAuthHandler(service *AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register 注册
// @Summary 注册
// @Description 注册学生或教师，未提供角色时为学生
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "user registered", response.WithEntity("user", u))
}

// Login 登录
// @Summary 邮箱密码登录
// @Description 返回访问令牌；启用 Redis 时同时写入 httpOnly 的 refresh_token cookie
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "邮箱和密码"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	h.setRefreshCookie(c, result.refreshToken)
	dto.MessageResponse(c, http.StatusOK, "login successful",
		response.WithEntity("token", result.Token),
		response.WithEntity("user", result.User),
	)
}

// Refresh 刷新访问令牌
// @Summary 刷新访问令牌
// @Description 使用 cookie 中的刷新令牌换取新的访问令牌，刷新令牌同时轮换
// @Tags 认证
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} response.Error
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookie)
	result, err := h.service.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearCookies(c)
		dto.ErrorResponse(c, err)
		return
	}
	h.setRefreshCookie(c, result.refreshToken)
	dto.MessageResponse(c, http.StatusOK, "token refreshed",
		response.WithEntity("token", result.Token),
		response.WithEntity("user", result.User),
	)
}

// Logout 退出登录
// @Summary 退出登录
// @Description 撤销刷新令牌并清除 cookie
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Message
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookie)
	if err := h.service.Logout(c.Request.Context(), refreshToken); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	h.clearCookies(c)
	dto.MessageResponse(c, http.StatusOK, "logged out")
}

// Me 当前用户
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userModel.User
// @Failure 401 {object} response.Error
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.SuccessResponse(c, u)
}

// RecoverPassword 找回密码
// @Summary 发送密码重置邮件
// @Description 重置链接一小时内有效，只能使用一次
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RecoverPasswordRequest true "邮箱"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /auth/recover-password [post]
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var req RecoverPasswordRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.RecoverPassword(c.Request.Context(), req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "recovery email sent")
}

// ResetPassword 重置密码
// @Summary 使用重置令牌设置新密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param token path string true "重置令牌"
// @Param request body ResetPasswordRequest true "新密码"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Router /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "password updated")
}

// CreateSuperadmin 初始化超级管理员
// @Summary 创建超级管理员
// @Description 需要 X-Superadmin-Key 请求头；未配置密钥时总是返回 403
// @Tags 认证
// @Accept json
// @Produce json
// @Param X-Superadmin-Key header string true "初始化密钥"
// @Param request body CreateSuperadminRequest true "超级管理员信息"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /auth/create-superadmin [post]
func (h *AuthHandler) CreateSuperadmin(c *gin.Context) {
	var req CreateSuperadminRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	u, err := h.service.CreateSuperadmin(c.Request.Context(), c.GetHeader(SuperadminHeader), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "superadmin created", response.WithEntity("user", u))
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	if token == "" {
		return
	}
	maxAge := int(h.service.opts.Refresh.TTL().Seconds())
	c.SetCookie(refreshCookie, token, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, true)
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	secure := gin.Mode() == gin.ReleaseMode
	c.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}
