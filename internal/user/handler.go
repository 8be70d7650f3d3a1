package user

import (
	"net/http"

	"akademi/internal/dto"
	"akademi/internal/middleware"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *UserService
}

func NewUserHandler(service *UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List 用户列表
// @Summary 用户列表
// @Description 仅超级管理员；支持 search、role 筛选、sort、分页
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param sort query string false "排序字段，- 前缀表示倒序" default(-createdAt)
// @Param role query string false "角色"
// @Param search query string false "按姓名、邮箱搜索"
// @Success 200 {object} response.List{data=[]userModel.User}
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, users, pagination)
}

// Get 查看用户
// @Summary 查看用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} userModel.User
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	u, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.SuccessResponse(c, u)
}

// Create 创建用户
// @Summary 创建教师或超级管理员
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "用户信息"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	u, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "user created", response.WithEntity("user", u))
}

// Update 修改用户
// @Summary 修改用户
// @Description 本人或超级管理员；角色只能由超级管理员修改
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body UpdateUserRequest true "需要修改的字段"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	var req UpdateUserRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	u, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "user updated", response.WithEntity("user", u))
}

// Delete 删除用户
// @Summary 删除用户
// @Description 仅超级管理员；名下有课程的教师不能删除；删除学生会同时释放其选课名额
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "user deleted")
}
