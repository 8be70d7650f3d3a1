package course

import (
	"net/http"

	"akademi/internal/dto"
	"akademi/internal/middleware"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	service *CourseService
}

func NewCourseHandler(service *CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List 课程列表
// @Summary 课程列表
// @Description 支持按标题、描述搜索，按 category、level 筛选，排序和分页
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param sort query string false "title, price, capacity, level, createdAt；- 前缀表示倒序" default(-createdAt)
// @Param category query string false "分类"
// @Param level query string false "难度" Enums(basic, intermediate, advanced)
// @Param search query string false "搜索词"
// @Success 200 {object} response.List{data=[]courseModel.View}
// @Failure 400 {object} response.Error
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, courses, pagination)
}

// ListMine 我的课程
// @Summary 当前教师的课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.List{data=[]courseModel.View}
// @Failure 403 {object} response.Error
// @Router /courses/mine [get]
func (h *CourseHandler) ListMine(c *gin.Context) {
	courses, pagination, err := h.service.ListMine(c.Request.Context(), middleware.CurrentActor(c), c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, courses, pagination)
}

// Get 课程详情
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} courseModel.View
// @Failure 404 {object} response.Error
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	course, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.SuccessResponse(c, course)
}

// Create 创建课程
// @Summary 创建课程
// @Description 仅教师，创建者即授课教师
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCourseRequest true "课程信息"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req CreateCourseRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	course, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "course created", response.WithEntity("course", course))
}

// Update 修改课程
// @Summary 修改课程
// @Description 仅授课教师；容量不能低于已选人数
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param request body UpdateCourseRequest true "需要修改的字段"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	var req UpdateCourseRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	course, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "course updated", response.WithEntity("course", course))
}

// Delete 删除课程
// @Summary 删除课程
// @Description 仅授课教师；仍有选课或成绩时返回 409
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "course deleted")
}
