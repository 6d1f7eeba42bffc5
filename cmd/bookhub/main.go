package main

import (
	"errors"
	stdLog "log"
	"os"

	"github.com/Astemirdum/bookhub/gateway/cli"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	os.Exit(cli.Execute())
}
