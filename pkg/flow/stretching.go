package flow

import (
	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

func init() {
	Register(&carpetStretchingDriver{})
}

type carpetStretchingDriver struct{}

func (d *carpetStretchingDriver) Kind() booking.TaskKind {
	return booking.TaskCarpetStretching
}

var stretchingCandidates = []locator.Candidate{
	locator.ByRole("button", "Stretching"),
	locator.ByText("Carpet Stretching"),
	locator.ByText("Stretching"),
}

func (d *carpetStretchingDriver) Apply(w *Wizard, task booking.Task, isLast bool) error {
	// Stretching lives under the Carpet Repair parent category.
	if err := w.OpenService("Carpet Repair"); err != nil {
		return err
	}

	if !w.Click(stretchingCandidates...) {
		w.warnf("carpet_stretching", "stretching sub-item not found (tried %s)",
			locator.Describe(stretchingCandidates))
	}
	w.WaitForIdle()

	return w.FinalizeService(isLast)
}
