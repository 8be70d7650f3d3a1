package route

import (
	"time"

	"akademi/config"
	"akademi/internal/auth"
	"akademi/internal/course"
	"akademi/internal/database"
	"akademi/internal/enrollment"
	"akademi/internal/middleware"
	"akademi/internal/pkg"
	"akademi/internal/qualitation"
	"akademi/internal/user"
	"akademi/pkg/email"
	"akademi/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps 路由需要的外部依赖
type Deps struct {
	Logger *logger.Logger
	Mailer email.Sender
}

func initRoute(r *gin.Engine, conf *config.AppConfig, store *database.Store, deps Deps) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", NewHealthHandler(store).Handle)

	tokens := pkg.NewTokenManager(conf.JWT.Secret, time.Duration(conf.JWT.ExpireTime)*time.Hour)
	users := user.NewUserRepository(store.DB)
	jwtAuth := middleware.JWTAuth(tokens, users)

	opts := auth.Options{
		Tokens:           tokens,
		Mailer:           deps.Mailer,
		Logger:           deps.Logger,
		MailFrom:         conf.Email.From,
		FrontendURL:      conf.Email.FrontendURL,
		ResetTTL:         time.Duration(conf.JWT.ResetExpireMinutes) * time.Minute,
		SuperadminSecret: conf.Superadmin.Secret,
	}
	if store.Redis != nil {
		opts.Refresh = auth.NewRefreshTokenRepository(store.Redis, time.Duration(conf.JWT.RefreshExpireTime)*time.Hour)
		opts.Resets = auth.NewRedisResetTokenStore(store.Redis)
	}

	apiV1 := r.Group("/api/v1")
	{
		auth.RegisterRoutes(apiV1, auth.NewAuthService(users, opts), jwtAuth)
		user.RegisterRoutes(apiV1, store.DB, jwtAuth)
		course.RegisterRoutes(apiV1, store.DB, jwtAuth)
		enrollment.RegisterRoutes(apiV1, store.DB, jwtAuth)
		qualitation.RegisterRoutes(apiV1, store.DB, jwtAuth)
	}
}

func SetupRouter(conf *config.AppConfig, store *database.Store, deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Mailer == nil {
		deps.Mailer = email.NewConsoleSender(deps.Logger.Std())
	}

	r := gin.Default()
	r.Use(middleware.Logger(deps.Logger))

	// 设置跨域请求
	r.Use(cors.New(cors.Config{
		AllowOrigins:     conf.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", auth.SuperadminHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	initRoute(r, conf, store, deps)

	return r
}
