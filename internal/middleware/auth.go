package middleware

import (
	"context"
	"errors"
	"strings"

	"akademi/internal/dto"
	"akademi/internal/model/user"
	"akademi/internal/pkg"
	"akademi/internal/policy"
	"akademi/pkg/logger"
	"akademi/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	actorKey    = "actor"
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// UserLookup 按 ID 查找用户，找不到时返回 nil 和 gorm.ErrRecordNotFound
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*user.User, error)
}

// extractToken 优先读取 Authorization header，其次读取 access_token cookie
func extractToken(c *gin.Context) (string, string) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", "malformed authorization header"
		}
		return strings.TrimSpace(token), ""
	}
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, ""
	}
	return "", "authentication required"
}

// JWTAuth JWT 认证中间件
// 角色以数据库中的用户为准，令牌中的角色只作参考
func JWTAuth(tokens *pkg.TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg := extractToken(c)
		if tokenString == "" {
			unauthorized(c, msg)
			return
		}

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, pkg.ErrExpiredToken) {
				unauthorized(c, "token expired")
				return
			}
			unauthorized(c, "invalid token")
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if pkg.IsNotFound(err) {
				unauthorized(c, "user no longer exists")
				return
			}
			dto.ErrorResponse(c, response.NewInternalError(err))
			return
		}

		c.Set(actorKey, policy.Actor{ID: u.ID, Role: u.Role})
		c.Set(userIDKey, u.ID)
		c.Set(userRoleKey, string(u.Role))
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	dto.ErrorResponse(c, response.NewBusinessError(
		response.WithErrorCode(response.Unauthorized),
		response.WithErrorMessage(msg),
	))
}

// CurrentActor 取出 JWTAuth 写入的当前用户；未认证时返回零值，Authorize 会拒绝零值 actor
func CurrentActor(c *gin.Context) policy.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return policy.Actor{}
	}
	actor, _ := v.(policy.Actor)
	return actor
}

// Logger 把日志实例放入上下文，供 dto.ErrorResponse 记录内部错误
func Logger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dto.LoggerKey, l)
		c.Next()
	}
}
