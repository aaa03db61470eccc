package main

import (
	"context"
	"log"

	"github.com/ttttiu/WAS/internal/client/cli"
	"github.com/ttttiu/WAS/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
