package qualitation

import (
	"net/http"

	"akademi/internal/dto"
	"akademi/internal/middleware"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

type QualitationHandler struct {
	service *QualitationService
}

func NewQualitationHandler(service *QualitationService) *QualitationHandler {
	return &QualitationHandler{service: service}
}

// Create 打分
// @Summary 给学生打分
// @Description 仅授课教师，学生必须已选该课程
// @Tags 成绩
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateQualitationRequest true "成绩"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /qualitations [post]
func (h *QualitationHandler) Create(c *gin.Context) {
	var req CreateQualitationRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	q, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusCreated, "qualitation created", response.WithEntity("qualitation", q))
}

// Update 修改成绩
// @Summary 修改成绩
// @Tags 成绩
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "成绩ID"
// @Param request body UpdateQualitationRequest true "分数或评语"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /qualitations/{id} [put]
func (h *QualitationHandler) Update(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	var req UpdateQualitationRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	q, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "qualitation updated", response.WithEntity("qualitation", q))
}

// Delete 删除成绩
// @Summary 删除成绩
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Param id path int true "成绩ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /qualitations/{id} [delete]
func (h *QualitationHandler) Delete(c *gin.Context) {
	id, err := dto.ParseID(c, "id")
	if err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.ErrorResponse(c, err)
		return
	}
	dto.MessageResponse(c, http.StatusOK, "qualitation deleted")
}

// ListByStudent 学生的成绩
// @Summary 学生的成绩列表
// @Description 教师只能看到自己课程内的成绩
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Param id path int true "学生ID"
// @Param sort query string false "score, createdAt" default(-createdAt)
// @Success 200 {object} response.List{data=[]qualitationModel.View}
// @Failure 403 {object} response.Error
// @Router /qualitations/student/{id} [get]
func (h *QualitationHandler) ListByStudent(c *gin.Context) {
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
