package main

import (
	"errors"
	"log"
	"os"

	"akademi/config"
	"akademi/internal/database"
	"akademi/internal/user"
	"akademi/pkg/logger"
)

func main() {
	conf := config.MustLoad("config.yaml")

	lg, err := logger.New(logger.Config{
		ServiceName:  conf.Server.Name + "-admin",
		Level:        conf.Log.Level,
		RollbarToken: conf.Rollbar.Token,
		Environment:  conf.Rollbar.Environment,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// 管理命令不连接 Redis
	conf.Redis.Enabled = false
	store, err := database.New(conf)
	if err != nil {
		lg.Error("init database", err)
		lg.Close()
		os.Exit(1)
	}

	cli := commandLine{
		db:    store.DB,
		users: user.NewUserRepository(store.DB),
	}
	err = cli.run(os.Args)
	if err != nil && !errors.Is(err, errHelp) {
		lg.Error("admin command failed", err)
	}
	_ = store.Close()
	lg.Close()
	if err != nil {
		os.Exit(1)
	}
}
