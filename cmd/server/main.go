package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"akademi/config"
	_ "akademi/docs"
	"akademi/internal/database"
	"akademi/internal/route"
	"akademi/pkg/email"
	"akademi/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Akademi API
// @version 1.0
// @description 课程选课与成绩管理接口
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	conf := config.MustLoad("config.yaml")
	gin.SetMode(conf.Server.Mode)

	// 2. 日志
	lg, err := logger.New(logger.Config{
		ServiceName:  conf.Server.Name,
		Level:        conf.Log.Level,
		Output:       conf.Log.Output,
		Path:         conf.Log.Path,
		RollbarToken: conf.Rollbar.Token,
		Environment:  conf.Rollbar.Environment,
		Host:         conf.Server.Addr(),
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	// 3. 初始化数据库
	store, err := database.New(conf)
	if err != nil {
		lg.Error("init database", err)
		lg.Close()
		os.Exit(1)
	}
	defer store.Close()

	// 4. 设置路由
	r := route.SetupRouter(conf, store, route.Deps{
		Logger: lg,
		Mailer: newMailer(conf, lg),
	})

	// 5. 启动服务
	srv := &http.Server{
		Addr:         conf.Server.Addr(),
		Handler:      r,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		lg.Info("server listening", logger.Fields{"addr": srv.Addr, "mode": conf.Server.Mode})
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", err)
		}
	case sig := <-shutdown:
		lg.Info("shutdown started", logger.Fields{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			lg.Error("graceful shutdown did not complete", err)
			_ = srv.Close()
		}
	}
}

func newMailer(conf *config.AppConfig, lg *logger.Logger) email.Sender {
	switch conf.Email.Provider {
	case "smtp":
		return email.NewClient(&conf.Email.Smtp)
	case "sendgrid":
		return email.NewSendGridClient(&conf.Email.SendGrid)
	default:
		return email.NewConsoleSender(lg.Std())
	}
}
