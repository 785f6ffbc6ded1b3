// Package cli wires the kong command tree: run executes one booking run,
// serve starts the HTTP job front end, relay starts the webhook relay.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/log"
	"github.com/mkershaw/bookpilot/pkg/log/sinks"
	"github.com/mkershaw/bookpilot/pkg/security"
)

type CLI struct {
	Profile string `help:"Path to the YAML site profile." default:"bookpilot.yml"`

	Run   RunCmd   `cmd:"" help:"Execute one booking run and exit."`
	Serve ServeCmd `cmd:"" help:"Start the HTTP job front end."`
	Relay RelayCmd `cmd:"" help:"Start the webhook relay."`
}

// buildLogger assembles the console+file logging pipeline for one process.
// The returned closer flushes the sinks.
func buildLogger(cfg config.Config, runID string, redactor *security.Redactor) (log.Logger, func(), error) {
	router := log.NewRouter(sinks.NewConsoleSink())
	router.Redactor = redactor

	if err := os.MkdirAll(cfg.LogsDir, 0755); err == nil {
		logPath := filepath.Join(cfg.LogsDir, runID+".json")
		if fileSink, err := sinks.NewFileSink(logPath); err == nil {
			router.AddSink(fileSink)
		}
	}

	base := zerolog.New(router).With().Timestamp().Logger()
	logger := log.NewZerologAdapter(base)

	closer := func() {
		if err := router.Close(); err != nil {
			// The logger itself is going away; stderr is all that is left.
			os.Stderr.WriteString("log shutdown error: " + err.Error() + "\n")
		}
	}
	return logger, closer, nil
}
