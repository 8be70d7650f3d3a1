package auth

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, service *AuthService, auth gin.HandlerFunc) {
	h := NewAuthHandler(service)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/recover-password", h.RecoverPassword)
		authGroup.POST("/reset-password/:token", h.ResetPassword)
		authGroup.POST("/create-superadmin", h.CreateSuperadmin)
		authGroup.GET("/me", auth, h.Me)
	}
}
