package qualitation

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	h := NewQualitationHandler(NewQualitationService(db, NewQualitationRepository(db)))

	qualitations := r.Group("/qualitations", auth)
	{
		qualitations.POST("", h.Create)
		qualitations.PUT("/:id", h.Update)
		qualitations.DELETE("/:id", h.Delete)
		qualitations.GET("/student/:id", h.ListByStudent)
	}
}
