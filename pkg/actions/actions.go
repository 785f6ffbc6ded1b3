// Package actions provides the primitive page interactions the flow drivers
// are built from. Every primitive wraps the resilient locator with a bounded
// timeout and reports success as a boolean: many wizard affordances are
// conditional on upstream UI state, and an absent optional control must not
// abort the run.
package actions

import (
	"fmt"
	"time"

	"github.com/mkershaw/bookpilot/pkg/browser"
	"github.com/mkershaw/bookpilot/pkg/locator"
	"github.com/mkershaw/bookpilot/pkg/log"
)

// Timings collects the bounded timeouts and poll intervals of the primitives.
// Tests shrink these; production uses DefaultTimings.
type Timings struct {
	Click      time.Duration // per-click actionability timeout
	Fill       time.Duration
	IdleSettle time.Duration // unconditional pause after DOM-ready
	LoadState  time.Duration
	MainMenu   time.Duration // hard ceiling for menu detection
	Poll       time.Duration
	EnableWait time.Duration // waiting for a disabled Next to enable
	OptionWait time.Duration // waiting for combobox options to render
	VerifyWait time.Duration // post-confirmation success probing
}

func DefaultTimings() Timings {
	return Timings{
		Click:      3 * time.Second,
		Fill:       3 * time.Second,
		IdleSettle: 1500 * time.Millisecond,
		LoadState:  10 * time.Second,
		MainMenu:   15 * time.Second,
		Poll:       200 * time.Millisecond,
		EnableWait: 7 * time.Second,
		OptionWait: 3 * time.Second,
		VerifyWait: 15 * time.Second,
	}
}

// Actions binds the primitives to one page and logger for the run's lifetime.
type Actions struct {
	Page    browser.Page
	Log     log.Logger
	Timings Timings
}

func New(page browser.Page, logger log.Logger, timings Timings) *Actions {
	if logger == nil {
		logger = log.Nop()
	}
	return &Actions{Page: page, Log: logger, Timings: timings}
}

// Click resolves the candidates and clicks the first usable element. Scroll
// into view is best-effort. Returns false, never an error, when every
// candidate fails.
func (a *Actions) Click(candidates ...locator.Candidate) bool {
	el, ok := locator.Resolve(a.Page, candidates)
	if !ok {
		a.Log.Debug().Str("candidates", locator.Describe(candidates)).Msg("click: no candidate resolved")
		return false
	}
	if err := el.ScrollIntoView(); err != nil {
		a.Log.Debug().Err(err).Msg("click: scroll into view failed, clicking anyway")
	}
	if err := el.Click(a.Timings.Click); err != nil {
		a.Log.Debug().Err(err).Str("candidates", locator.Describe(candidates)).Msg("click failed")
		return false
	}
	return true
}

// Fill resolves the candidates and fills the first usable input with the full
// value (replacing, not appending).
func (a *Actions) Fill(value string, candidates ...locator.Candidate) bool {
	el, ok := locator.Resolve(a.Page, candidates)
	if !ok {
		a.Log.Debug().Str("candidates", locator.Describe(candidates)).Msg("fill: no candidate resolved")
		return false
	}
	if err := el.Fill(value, a.Timings.Fill); err != nil {
		a.Log.Debug().Err(err).Str("candidates", locator.Describe(candidates)).Msg("fill failed")
		return false
	}
	return true
}

// quantityCandidates are the strategies for the catalog quantity widget.
var quantityCandidates = []locator.Candidate{
	locator.ByTestID("quantity-input"),
	locator.ByCSS(`input[type="number"]`),
	locator.ByLabel("quantity"),
	locator.ByCSS(`input[name*="quantity" i]`),
	locator.ByRole("spinbutton", ""),
}

// SetQuantity fills the quantity input and tabs out of it; some widgets only
// persist the value on blur. No-op returning false for qty <= 0.
func (a *Actions) SetQuantity(qty int) bool {
	if qty <= 0 {
		return false
	}
	el, ok := locator.Resolve(a.Page, quantityCandidates)
	if !ok {
		a.Log.Debug().Msg("set quantity: no quantity input found")
		return false
	}
	if err := el.Fill(fmt.Sprintf("%d", qty), a.Timings.Fill); err != nil {
		a.Log.Debug().Err(err).Msg("set quantity: fill failed")
		return false
	}
	if err := el.Press("Tab"); err != nil {
		a.Log.Debug().Err(err).Msg("set quantity: tab commit failed")
		return false
	}
	return true
}

// WaitForIdle waits for DOM-ready, then pauses unconditionally. The extra
// pause is a tunable stand-in for real mutation quiescence: the SPA keeps
// mutating the DOM after the ready signal fires.
func (a *Actions) WaitForIdle() {
	if err := a.Page.WaitForLoad(a.Timings.LoadState); err != nil {
		a.Log.Debug().Err(err).Msg("wait for idle: load state timed out")
	}
	a.Page.Pause(a.Timings.IdleSettle)
}

// mainMenuProbes detect that the service menu has rendered. Any one visible
// probe is enough.
var mainMenuProbes = []locator.Candidate{
	locator.ByRole("button", "Carpet Cleaning"),
	locator.ByText("Select a Service"),
	locator.ByText("Choose your service"),
	locator.ByCSS(".service-card"),
	locator.ByText("Carpet Cleaning"),
}

// WaitForMainMenu polls for the service menu until the timeout elapses. This
// is a hard precondition for everything downstream, so timing out is an
// error, not a soft failure.
func (a *Actions) WaitForMainMenu() error {
	deadline := time.Now().Add(a.Timings.MainMenu)
	for {
		if _, ok := locator.ResolveVisible(a.Page, mainMenuProbes); ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("service menu did not render within %s (probes: %s)",
				a.Timings.MainMenu, locator.Describe(mainMenuProbes))
		}
		time.Sleep(a.Timings.Poll)
	}
}
