package route

import (
	"context"
	"net/http"
	"time"

	"akademi/internal/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store *database.Store
}

func NewHealthHandler(store *database.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Handle 健康检查
// @Summary 健康检查
// @Description 检查数据库连接，启用 Redis 时一并检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok"}
	code := http.StatusOK

	sqlDB, err := h.store.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["status"], status["database"] = "unavailable", err.Error()
		code = http.StatusServiceUnavailable
	}

	if h.store.Redis != nil {
		status["redis"] = "ok"
		if err := h.store.Redis.Ping(ctx).Err(); err != nil {
			status["status"], status["redis"] = "unavailable", err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}
