package main

import (
	"context"
	"log"
	"os"

	"github.com/dkarpov/examgate/internal/buildinfo"
	"github.com/dkarpov/examgate/internal/client/cli"
	"github.com/dkarpov/examgate/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.Load()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
