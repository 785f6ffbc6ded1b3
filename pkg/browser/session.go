package browser

import (
	"fmt"

	pw "github.com/playwright-community/playwright-go"

	"github.com/mkershaw/bookpilot/pkg/log"
)

// Options configures how a session's browser is provisioned. Built once from
// config and passed by value.
type Options struct {
	Headless bool
	SlowMoMS int
	// LaunchArgs are extra Chromium flags, typically the anti-automation
	// fingerprint tuning. Ignored when connecting to a remote browser.
	LaunchArgs []string
	UserAgent  string
	// KeepOpen leaves the browser alive after the run for manual inspection.
	KeepOpen bool
}

// DefaultLaunchArgs are the Chromium flags used for local launches unless a
// site profile overrides them.
var DefaultLaunchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-sandbox",
	"--disable-dev-shm-usage",
}

// Session owns one browser, one context and one page for the duration of a
// single run. It is exclusively owned by the orchestrator; nothing else may
// touch the page mid-run.
type Session struct {
	runtime  *pw.Playwright
	browser  pw.Browser
	context  pw.BrowserContext
	page     pw.Page
	keepOpen bool
	logger   log.Logger
}

// Page returns the session's page behind the driving interface.
func (s *Session) Page() Page {
	return &pwPage{page: s.page}
}

// Close tears the session down. With KeepOpen set it only detaches, leaving
// the browser live.
func (s *Session) Close() error {
	if s.keepOpen {
		s.logger.Warn().Msg("keep-open set, leaving browser session alive")
		return nil
	}

	var firstErr error
	if s.context != nil {
		if err := s.context.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.runtime != nil {
		if err := s.runtime.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Provisioner yields a connected browser session. The orchestrator is
// agnostic to whether the browser was launched locally or connected remotely;
// the choice is made entirely by configuration.
type Provisioner interface {
	Provision(opts Options) (*Session, error)
}

// LocalLauncher starts a Chromium process on this machine.
type LocalLauncher struct {
	Logger log.Logger
}

func (l *LocalLauncher) Provision(opts Options) (*Session, error) {
	runtime, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	args := opts.LaunchArgs
	if len(args) == 0 {
		args = DefaultLaunchArgs
	}

	launchOpts := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		Args:     args,
	}
	if opts.SlowMoMS > 0 {
		launchOpts.SlowMo = pw.Float(float64(opts.SlowMoMS))
	}

	browser, err := runtime.Chromium.Launch(launchOpts)
	if err != nil {
		runtime.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return newSession(runtime, browser, opts, l.Logger)
}

// RemoteConnector attaches to an already-running browser over CDP, e.g. a
// managed anti-bot browser provider.
type RemoteConnector struct {
	Endpoint string
	Logger   log.Logger
}

func (r *RemoteConnector) Provision(opts Options) (*Session, error) {
	runtime, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	browser, err := runtime.Chromium.ConnectOverCDP(r.Endpoint)
	if err != nil {
		runtime.Stop()
		return nil, fmt.Errorf("connecting to remote browser at %q: %w", r.Endpoint, err)
	}

	return newSession(runtime, browser, opts, r.Logger)
}

func newSession(runtime *pw.Playwright, browser pw.Browser, opts Options, logger log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Nop()
	}

	ctxOpts := pw.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = pw.String(opts.UserAgent)
	}

	context, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		runtime.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		runtime.Stop()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	return &Session{
		runtime:  runtime,
		browser:  browser,
		context:  context,
		page:     page,
		keepOpen: opts.KeepOpen,
		logger:   logger,
	}, nil
}
