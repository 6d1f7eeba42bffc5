package main

import (
	"errors"
	stdLog "log"
	"os"

	"github.com/Astemirdum/bookhub/gateway/app"
	"github.com/Astemirdum/bookhub/gateway/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithWriteTimeout(0),
	)

	app.Run(cfg)
}
