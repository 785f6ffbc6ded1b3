package main

import (
	stdlog "log"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mkershaw/bookpilot/cmd/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Printf("no .env file found, relying on real ENV: %v", err)
	}

	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("bookpilot"),
		kong.Description("Automates the multi-step home-services booking wizard."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&root))
}
