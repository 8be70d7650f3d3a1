package enrollment

import (
	"net/http"

	"akademi/internal/dto"
	"akademi/internal/middleware"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	service *EnrollmentService
}

func NewEnrollmentHandler(service *EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll 选课
// @Summary 选课
// @Description 仅学生；已选或名额已满时返回 409
// @Tags 选课
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EnrollRequest true "课程ID"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	e, err := h.service.Enroll(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "enrolled successfully", response.WithEntity("enrollment", e))
}

// Cancel 取消选课
// @Summary 取消选课
// @Description 只能取消自己的选课，名额随之释放
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "选课ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.Cancel(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "enrollment cancelled")
}

// ListByStudent 学生的选课
// @Summary 学生的选课列表
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.List{data=[]enrollmentModel.View}
// @Failure 403 {object} response.Error
// @Router /enrollments/student/{id} [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	items, pagination, err := h.service.ListByStudent(c.Request.Context(), middleware.CurrentActor(c), id, c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, items, pagination)
}

// ListByCourse 课程的选课学生
// @Summary 课程的选课学生
// @Description 仅授课教师
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} response.List{data=[]enrollmentModel.View}
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /enrollments/course/{id} [get]
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	items, pagination, err := h.service.ListByCourse(c.Request.Context(), middleware.CurrentActor(c), id, c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, items, pagination)
}

// Roster 教师的学生名单
// @Summary 教师的学生名单
// @Description 教师所有课程的选课学生，附带成绩和评语
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param search query string false "按学生姓名、邮箱或课程标题搜索"
// @Param sort query string false "course, name, createdAt" default(course)
// @Success 200 {object} response.List{data=[]enrollmentModel.RosterEntry}
// @Failure 403 {object} response.Error
// @Router /enrollments/roster [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	entries, pagination, err := h.service.Roster(c.Request.Context(), middleware.CurrentActor(c), c.Request.URL.Query())
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.ListResponse(c, entries, pagination)
}
