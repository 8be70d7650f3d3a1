package dto

import (
	"net/http"
	"strconv"

	"akademi/pkg/logger"
	res "akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

// LoggerKey gin 上下文中日志实例的 key，由 middleware.Logger 写入
const LoggerKey = "logger"

func SuccessResponse(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func CreatedResponse(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// MessageResponse 变更类接口：{msg, <key>: entity}
func MessageResponse(c *gin.Context, status int, msg string, opts ...res.MessageOption) {
	c.JSON(status, res.NewMessage(msg, opts...))
}

func ListResponse(c *gin.Context, data any, pagination res.Pagination) {
	c.JSON(http.StatusOK, res.ListResponse(data, pagination))
}

// ErrorResponse 按错误码返回对应 HTTP 状态；内部错误只记录日志，不向调用方暴露原因
func ErrorResponse(c *gin.Context, err *res.BusinessError) {
	if err.Internal() {
		if l, ok := c.Get(LoggerKey); ok {
			l.(*logger.Logger).Error("request failed", err, logger.Fields{
				"method": c.Request.Method,
				"path":   c.FullPath(),
			})
		}
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(err.HTTPStatus(), res.ErrorResponse(err))
}

// BindJSON 解析请求体，失败时返回 ParseError
func BindJSON(c *gin.Context, obj any) *res.BusinessError {
	if err := c.ShouldBindJSON(obj); err != nil {
		return res.NewBusinessError(
			res.WithErrorCode(res.ParseError),
			res.WithErrorMessage("invalid request body"),
			res.WithError(err),
		)
	}
	return nil
}

// ParseID 解析路径中的数字 ID
func ParseID(c *gin.Context, name string) (uint, *res.BusinessError) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, res.NewBusinessError(
			res.WithErrorCode(res.ParseError),
			res.WithErrorMessage("invalid "+name),
		)
	}
	return uint(id), nil
}
