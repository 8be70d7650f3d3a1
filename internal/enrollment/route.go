package enrollment

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	h := NewEnrollmentHandler(NewEnrollmentService(db, NewEnrollmentRepository(db)))

	enrollments := r.Group("/enrollments", auth)
	{
		enrollments.POST("", h.Enroll)
		enrollments.DELETE("/:id", h.Cancel)
		enrollments.GET("/student/:id", h.ListByStudent)
		enrollments.GET("/course/:id", h.ListByCourse)
		enrollments.GET("/roster", h.Roster)
	}
}
