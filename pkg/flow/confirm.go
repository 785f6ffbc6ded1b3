package flow

import (
	"regexp"
	"strings"
	"time"

	"github.com/mkershaw/bookpilot/pkg/locator"
)

// confirmLabels are the final-confirmation button labels observed across the
// site's revisions, most specific first.
var confirmLabels = []string{
	"Book my appointment",
	"Book Appointment",
	"Confirm Booking",
	"Complete Booking",
	"Confirm",
	"Submit",
	"Finish",
	"Continue",
}

var confirmCSSCandidates = []locator.Candidate{
	locator.ByCSS(`.MuiButton-containedPrimary`),
	locator.ByCSS(`button[class*="contained"]`),
	locator.ByCSS(`button.primary`),
	locator.ByCSS(`button[type="submit"]`),
}

// confirmAnyCandidates resolve some plausible confirmation control for the
// strategies that need an element handle rather than a click.
func confirmAnyCandidates() []locator.Candidate {
	pattern := "^(" + strings.Join(confirmLabels, "|") + ")$"
	cands := []locator.Candidate{locator.ByRole("button", pattern)}
	return append(cands, confirmCSSCandidates...)
}

var confirmationSignals = []locator.Candidate{
	locator.ByText("Thank you"),
	locator.ByText("confirmed"),
	locator.ByText("booking received"),
	locator.ByText("appointment is booked"),
	locator.ByTestID("booking-confirmation"),
}

var loadingSignals = []locator.Candidate{
	locator.ByCSS(`.spinner`),
	locator.ByCSS(`[role="progressbar"]`),
	locator.ByCSS(`.loading`),
}

var validationErrorSignals = []locator.Candidate{
	locator.ByCSS(`.error`),
	locator.ByCSS(`[role="alert"]`),
	locator.ByCSS(`.field-error`),
}

const removeOverlayJS = `document.querySelectorAll('.overlay, .modal-backdrop, [data-overlay]').forEach(el => el.remove())`

type confirmSnapshot struct {
	url          string
	confirmCount int
	disabled     bool
}

func (w *Wizard) snapshotConfirmState() confirmSnapshot {
	snap := confirmSnapshot{url: w.Page.URL()}
	if _, ok := locator.Resolve(w.Page, confirmationSignals); ok {
		snap.confirmCount = 1
	}
	if el, ok := locator.Resolve(w.Page, confirmAnyCandidates()); ok {
		if enabled, err := el.IsEnabled(); err == nil {
			snap.disabled = !enabled
		}
	}
	return snap
}

// observedEffect reports whether anything on the page suggests the attempted
// strategy actually did something: a navigation, a confirmation node, a
// loading indicator, or the target button flipping its disabled state.
func (w *Wizard) observedEffect(before confirmSnapshot) bool {
	if w.Page.URL() != before.url {
		return true
	}
	if _, ok := locator.Resolve(w.Page, confirmationSignals); ok && before.confirmCount == 0 {
		return true
	}
	if _, ok := locator.ResolveVisible(w.Page, loadingSignals); ok {
		return true
	}
	if el, ok := locator.Resolve(w.Page, confirmAnyCandidates()); ok {
		if enabled, err := el.IsEnabled(); err == nil && !enabled != before.disabled {
			return true
		}
	}
	return false
}

// repairValidationState inspects the screen for reasons the confirmation
// button might be disabled and repairs what it can: unchecked required
// checkboxes get checked, visible validation errors get logged.
func (w *Wizard) repairValidationState() {
	required := w.Page.BySelector(`input[type="checkbox"][required]`)
	count, err := required.Count()
	if err == nil {
		for i := 0; i < count; i++ {
			box := required.Nth(i)
			checked, err := box.IsChecked()
			if err != nil || checked {
				continue
			}
			if err := box.Click(w.Timings.Click); err != nil {
				w.Log.Debug().Err(err).Int("index", i).Msg("required checkbox repair failed")
			} else {
				w.Log.Info().Int("index", i).Msg("checked a required checkbox before confirmation")
			}
		}
	}

	if el, ok := locator.ResolveVisible(w.Page, validationErrorSignals); ok {
		if text, err := el.InnerText(); err == nil && strings.TrimSpace(text) != "" {
			w.Log.Warn().Str("validation_error", strings.TrimSpace(text)).Msg("validation error visible before confirmation")
		}
	}
}

type confirmStrategy struct {
	name    string
	attempt func(w *Wizard) bool
}

var confirmStrategies = []confirmStrategy{
	{name: "exact_label", attempt: func(w *Wizard) bool {
		for _, label := range confirmLabels {
			if w.Click(locator.ByRoleExact("button", label), locator.ByTextExact(label)) {
				return true
			}
		}
		return false
	}},
	{name: "css_primary", attempt: func(w *Wizard) bool {
		return w.Click(confirmCSSCandidates...)
	}},
	{name: "dom_dispatch", attempt: func(w *Wizard) bool {
		el, ok := locator.Resolve(w.Page, confirmAnyCandidates())
		if !ok {
			return false
		}
		return el.DispatchClick() == nil
	}},
	{name: "keyboard", attempt: func(w *Wizard) bool {
		el, ok := locator.Resolve(w.Page, confirmAnyCandidates())
		if !ok {
			return false
		}
		if err := el.Focus(); err != nil {
			return false
		}
		if el.Press("Enter") == nil {
			return true
		}
		return el.Press(" ") == nil
	}},
	{name: "coordinate", attempt: func(w *Wizard) bool {
		el, ok := locator.Resolve(w.Page, confirmAnyCandidates())
		if !ok {
			return false
		}
		x, y, width, height, err := el.BoundingBox()
		if err != nil || width == 0 {
			return false
		}
		return w.Page.MouseClick(x+width/2, y+height/2) == nil
	}},
	{name: "scroll_then_click", attempt: func(w *Wizard) bool {
		el, ok := locator.Resolve(w.Page, confirmAnyCandidates())
		if !ok {
			return false
		}
		if err := el.ScrollIntoView(); err != nil {
			return false
		}
		return el.Click(w.Timings.Click) == nil
	}},
	{name: "overlay_removal", attempt: func(w *Wizard) bool {
		if _, err := w.Page.Evaluate(removeOverlayJS); err != nil {
			return false
		}
		return w.Click(confirmAnyCandidates()...)
	}},
}

// ConfirmBooking runs the deliberately redundant confirmation ladder: each
// strategy is attempted in sequence until one produces an observable effect.
// Exhausting every strategy is fatal.
func (w *Wizard) ConfirmBooking() error {
	w.repairValidationState()

	for _, strategy := range confirmStrategies {
		before := w.snapshotConfirmState()
		if !strategy.attempt(w) {
			w.Log.Debug().Str("strategy", strategy.name).Msg("confirmation strategy not applicable")
			continue
		}
		w.Page.Pause(w.Timings.Poll)
		if w.observedEffect(before) {
			w.Log.Info().Str("strategy", strategy.name).Msg("final confirmation triggered")
			return nil
		}
		w.Log.Debug().Str("strategy", strategy.name).Msg("confirmation strategy had no observable effect")
	}

	return fatalf("final_confirmation", "all %d confirmation strategies exhausted", len(confirmStrategies))
}

var thankYouTitle = regexp.MustCompile(`(?i)(thank|confirm|success)`)

// VerifySuccess waits, bounded, for any post-submission confirmation signal.
// It returns a boolean rather than an error: the booking side effect (if any)
// has already happened, so the caller treats false as a soft failure.
func (w *Wizard) VerifySuccess() bool {
	deadline := time.Now().Add(w.Timings.VerifyWait)
	for {
		if _, ok := locator.ResolveVisible(w.Page, confirmationSignals); ok {
			return true
		}
		if thankYouTitle.MatchString(w.Page.Title()) || thankYouTitle.MatchString(w.Page.URL()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(w.Timings.Poll)
	}
}
