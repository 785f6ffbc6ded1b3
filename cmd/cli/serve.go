package cli

import (
	"github.com/google/uuid"

	"github.com/mkershaw/bookpilot/internal/server"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/security"
)

type ServeCmd struct{}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Profile)
	if err != nil {
		return err
	}

	logger, closeLogs, err := buildLogger(cfg, "server-"+uuid.New().String(), security.NewRedactor(cfg.WebhookSecret))
	if err != nil {
		return err
	}
	defer closeLogs()

	return server.New(cfg, logger).ListenAndServe()
}
