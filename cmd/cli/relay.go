package cli

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkershaw/bookpilot/internal/relay"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/security"
)

type RelayCmd struct{}

func (r *RelayCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Profile)
	if err != nil {
		return err
	}
	if cfg.RunnerURL == "" {
		return fmt.Errorf("relay requires BOOKPILOT_RUNNER_URL")
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("relay requires BOOKPILOT_WEBHOOK_SECRET")
	}

	logger, closeLogs, err := buildLogger(cfg, "relay-"+uuid.New().String(), security.NewRedactor(cfg.WebhookSecret))
	if err != nil {
		return err
	}
	defer closeLogs()

	return relay.New(cfg, logger).ListenAndServe()
}
