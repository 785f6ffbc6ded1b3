// Package flow drives the booking wizard screen by screen. Each service task
// re-enters the same linear state machine: main menu -> service detail ->
// cart drawer -> add to booking -> book service, then either loops back for
// more services or proceeds through contact details, scheduling and final
// confirmation.
package flow

import (
	"fmt"

	"github.com/mkershaw/bookpilot/pkg/actions"
	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/browser"
	"github.com/mkershaw/bookpilot/pkg/log"
)

// StepError marks a condition from which the run cannot meaningfully
// continue. The orchestrator's single top-level handler records the failing
// step and aborts. Optional-affordance helpers never produce one; they log
// and return.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func fatalf(step, format string, v ...any) *StepError {
	return &StepError{Step: step, Err: fmt.Errorf(format, v...)}
}

// Wizard holds the per-run state the drivers share: the page, the request,
// and the primitives bound to both.
type Wizard struct {
	*actions.Actions
	Req *booking.BookingRequest

	// Warnings accumulates the soft failures of the run: optional
	// affordances that were absent, date/time selections that silently
	// no-oped. They surface on the RunOutcome so a caller can spot a
	// suspect booking that still completed.
	Warnings []string
}

func NewWizard(page browser.Page, logger log.Logger, req *booking.BookingRequest, timings actions.Timings) *Wizard {
	return &Wizard{
		Actions: actions.New(page, logger, timings),
		Req:     req,
	}
}

// warnf records a soft failure.
func (w *Wizard) warnf(step, format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	w.Warnings = append(w.Warnings, fmt.Sprintf("%s: %s", step, msg))
	w.Log.Warn().Str("step", step).Msg(msg)
}

// ServiceDriver applies one task variant to the wizard. isLast selects the
// checkout tail instead of the add-more-services loop-back.
type ServiceDriver interface {
	Kind() booking.TaskKind
	Apply(w *Wizard, task booking.Task, isLast bool) error
}

var registry = map[booking.TaskKind]ServiceDriver{}

// Register adds a driver to the registry. Called from each driver's init.
func Register(d ServiceDriver) {
	registry[d.Kind()] = d
}

// ForTask resolves the driver for a task kind.
func ForTask(kind booking.TaskKind) (ServiceDriver, error) {
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no driver registered for task kind %q", kind)
	}
	return d, nil
}
