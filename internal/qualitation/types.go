package qualitation

import (
	"strings"

	qualitationModel "akademi/internal/model/qualitation"
)

// CreateQualitationRequest 给学生打分，分数 0 到 100
type CreateQualitationRequest struct {
	StudentID uint     `json:"studentId" validate:"required" example:"3"`
	CourseID  uint     `json:"courseId" validate:"required" example:"1"`
	Score     *float64 `json:"score" validate:"required,gte=0,lte=100" example:"85"`
	Feedback  string   `json:"feedback" validate:"max=500" example:"Buen trabajo"`
}

func (r *CreateQualitationRequest) normalize() {
	r.Feedback = strings.TrimSpace(r.Feedback)
}

func (r *CreateQualitationRequest) toModel() *qualitationModel.Qualitation {
	return &qualitationModel.Qualitation{
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Score:     *r.Score,
		Feedback:  r.Feedback,
	}
}

// UpdateQualitationRequest 只能修改分数和评语
type UpdateQualitationRequest struct {
	Score    *float64 `json:"score" validate:"omitnil,gte=0,lte=100"`
	Feedback *string  `json:"feedback" validate:"omitnil,max=500"`
}

func (r *UpdateQualitationRequest) normalize() {
	if r.Feedback != nil {
		f := strings.TrimSpace(*r.Feedback)
		r.Feedback = &f
	}
}

func (r *UpdateQualitationRequest) updates() map[string]any {
	updates := map[string]any{}
	if r.Score != nil {
		updates["score"] = *r.Score
	}
	if r.Feedback != nil {
		updates["feedback"] = *r.Feedback
	}
	return updates
}
