// Package engine owns the browser session lifecycle and walks the task queue
// through the flow drivers. One Engine run is strictly sequential: the wizard
// is a linear stateful SPA and concurrent page actions would race its own
// transitions.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkershaw/bookpilot/pkg/actions"
	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/browser"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/flow"
	"github.com/mkershaw/bookpilot/pkg/log"
)

// RunOutcome is the engine's report to the process wrapper. No partial
// success: a run either completes the whole queue through verification or is
// failed with the step that stopped it.
type RunOutcome struct {
	Success        bool
	FailingStep    string
	ScreenshotPath string
	Warnings       []string
}

type Engine struct {
	cfg         config.Config
	provisioner browser.Provisioner
	logger      log.Logger
}

func New(cfg config.Config, provisioner browser.Provisioner, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{cfg: cfg, provisioner: provisioner, logger: logger}
}

// timings derives the actions timings from config overrides.
func (e *Engine) timings() actions.Timings {
	t := actions.DefaultTimings()
	if e.cfg.MainMenuTimeoutMS > 0 {
		t.MainMenu = time.Duration(e.cfg.MainMenuTimeoutMS) * time.Millisecond
	}
	if e.cfg.IdleSettleMS > 0 {
		t.IdleSettle = time.Duration(e.cfg.IdleSettleMS) * time.Millisecond
	}
	return t
}

// Run executes one booking run end to end.
func (e *Engine) Run(req *booking.BookingRequest) RunOutcome {
	session, err := e.provisioner.Provision(browser.Options{
		Headless:   e.cfg.Headless,
		SlowMoMS:   e.cfg.SlowMoMS,
		LaunchArgs: e.cfg.StealthArgs,
		UserAgent:  e.cfg.UserAgent,
		KeepOpen:   e.cfg.KeepBrowserOpen,
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("browser provisioning failed")
		return RunOutcome{FailingStep: "browser_provision"}
	}
	defer func() {
		if err := session.Close(); err != nil {
			e.logger.Warn().Err(err).Msg("session teardown reported an error")
		}
	}()

	return e.RunOnPage(session.Page(), req)
}

// RunOnPage drives a run against an already-provisioned page. Split out so
// tests can execute the full flow against a scripted fake site.
func (e *Engine) RunOnPage(page browser.Page, req *booking.BookingRequest) RunOutcome {
	wiz := flow.NewWizard(page, e.logger, req, e.timings())

	if err := page.Goto(e.cfg.EntryURL); err != nil {
		e.logger.Error().Err(err).Str("url", e.cfg.EntryURL).Msg("navigation failed")
		return e.failed(page, wiz, &flow.StepError{Step: "navigate", Err: err})
	}
	wiz.WaitForIdle()

	queue := booking.BuildQueue(req)
	e.logger.Info().Int("tasks", len(queue)).Msg("task queue built")

	if req.Upholstery && !booking.HasKind(queue, booking.TaskUpholstery) {
		// Enabled family with nothing to add: anomalous payload, not fatal.
		e.logger.Warn().Msg("upholstery enabled but every item quantity is zero")
		wiz.Warnings = append(wiz.Warnings, "queue: upholstery enabled with no items")
	}

	if len(queue) == 0 {
		e.logger.Warn().Msg("empty task queue, nothing to book")
		return RunOutcome{Success: true, Warnings: append(wiz.Warnings, "queue: no services requested")}
	}

	for i, task := range queue {
		isLast := i == len(queue)-1
		taskLogger := e.logger.With().Str("task", string(task.Kind)).Int("index", i).Logger()
		taskLogger.Info().Bool("last", isLast).Msg("processing task")

		if err := wiz.WaitForMainMenu(); err != nil {
			return e.failed(page, wiz, &flow.StepError{Step: "main_menu", Err: err})
		}

		driver, err := flow.ForTask(task.Kind)
		if err != nil {
			return e.failed(page, wiz, &flow.StepError{Step: "dispatch", Err: err})
		}

		if err := driver.Apply(wiz, task, isLast); err != nil {
			return e.failed(page, wiz, err)
		}
	}

	e.logger.Info().Int("warnings", len(wiz.Warnings)).Msg("run completed")
	return RunOutcome{Success: true, Warnings: wiz.Warnings}
}

// failed is the single top-level fatal handler: capture postmortem
// artifacts, record the failing step, and let the deferred teardown run.
func (e *Engine) failed(page browser.Page, wiz *flow.Wizard, err error) RunOutcome {
	step := "unknown"
	var stepErr *flow.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step
	}
	e.logger.Error().Err(err).Str("step", step).Msg("run failed")

	outcome := RunOutcome{FailingStep: step, Warnings: wiz.Warnings}
	outcome.ScreenshotPath = e.capturePostmortem(page)
	return outcome
}

// capturePostmortem writes a timestamped screenshot and HTML dump for
// debugging. Best-effort side channel, not part of the contract.
func (e *Engine) capturePostmortem(page browser.Page) string {
	if err := os.MkdirAll(e.cfg.ArtifactDir, 0755); err != nil {
		e.logger.Warn().Err(err).Msg("could not create artifact directory")
		return ""
	}

	stamp := time.Now().Format("20060102-150405")
	shotPath := filepath.Join(e.cfg.ArtifactDir, fmt.Sprintf("failure-%s.png", stamp))
	if err := page.Screenshot(shotPath); err != nil {
		e.logger.Warn().Err(err).Msg("postmortem screenshot failed")
		shotPath = ""
	}

	if html, err := page.Content(); err == nil {
		htmlPath := filepath.Join(e.cfg.ArtifactDir, fmt.Sprintf("failure-%s.html", stamp))
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
			e.logger.Warn().Err(err).Msg("postmortem HTML dump failed")
		}
	}

	return shotPath
}
