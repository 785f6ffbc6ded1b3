package cli

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/browser"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/engine"
	"github.com/mkershaw/bookpilot/pkg/security"
)

type RunCmd struct {
	Payload     string `help:"Booking request JSON, inline." env:"BOOKPILOT_PAYLOAD"`
	PayloadFile string `help:"Path to a booking request JSON file." env:"BOOKPILOT_PAYLOAD_FILE"`
}

func (r *RunCmd) loadRequest(cfg config.Config) (*booking.BookingRequest, error) {
	switch {
	case r.Payload != "":
		return booking.ParseRequest([]byte(r.Payload))
	case r.PayloadFile != "":
		return booking.ParseRequestFile(r.PayloadFile)
	case cfg.Payload != "":
		return booking.ParseRequest([]byte(cfg.Payload))
	case cfg.PayloadFile != "":
		return booking.ParseRequestFile(cfg.PayloadFile)
	default:
		return nil, fmt.Errorf("no booking payload: set --payload, --payload-file, BOOKPILOT_PAYLOAD or BOOKPILOT_PAYLOAD_FILE")
	}
}

func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Profile)
	if err != nil {
		return err
	}

	req, err := r.loadRequest(cfg)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	redactor := security.NewRedactor(cfg.WebhookSecret, req.Phone, req.Email)
	logger, closeLogs, err := buildLogger(cfg, runID, redactor)
	if err != nil {
		return err
	}
	defer closeLogs()

	logger.Info().Str("run_id", runID).Msg("starting booking run")

	var provisioner browser.Provisioner
	if cfg.RemoteWS != "" {
		logger.Info().Str("endpoint", cfg.RemoteWS).Msg("using remote browser")
		provisioner = &browser.RemoteConnector{Endpoint: cfg.RemoteWS, Logger: logger}
	} else {
		provisioner = &browser.LocalLauncher{Logger: logger}
	}

	outcome := engine.New(cfg, provisioner, logger).Run(req)

	for _, warning := range outcome.Warnings {
		logger.Warn().Str("warning", warning).Msg("run warning")
	}
	if !outcome.Success {
		return fmt.Errorf("booking run failed at step %q (screenshot: %s)",
			outcome.FailingStep, orNone(outcome.ScreenshotPath))
	}
	logger.Info().Str("run_id", runID).Msg("booking run completed")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
