package course

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	h := NewCourseHandler(NewCourseService(NewCourseRepository(db)))

	courses := r.Group("/courses", auth)
	{
		courses.GET("", h.List)
		courses.GET("/mine", h.ListMine)
		courses.GET("/:id", h.Get)
		courses.POST("", h.Create)
		courses.PUT("/:id", h.Update)
		courses.DELETE("/:id", h.Delete)
	}
}
