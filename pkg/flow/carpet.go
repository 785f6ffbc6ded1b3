package flow

import (
	"fmt"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

func init() {
	Register(&carpetCleaningDriver{})
}

type carpetCleaningDriver struct{}

func (d *carpetCleaningDriver) Kind() booking.TaskKind {
	return booking.TaskCarpetCleaning
}

// bedroomPattern maps a bedroom count to the option-label pattern shown on
// the carpet cleaning detail screen. Anything outside {2,3,4} falls back to
// the 4-bedroom option.
func bedroomPattern(bedrooms int) string {
	switch bedrooms {
	case 2, 3:
		return fmt.Sprintf(`%d\s*Bed`, bedrooms)
	default:
		return `4\s*Bed`
	}
}

func (d *carpetCleaningDriver) Apply(w *Wizard, task booking.Task, isLast bool) error {
	if err := w.OpenService("Carpet Cleaning"); err != nil {
		return err
	}

	pattern := bedroomPattern(task.Bedrooms)
	if !w.Click(
		locator.ByRole("button", pattern),
		locator.ByRole("radio", pattern),
		locator.ByText(pattern),
		locator.ByCSS(fmt.Sprintf(`label:has-text("%d Bedroom")`, task.Bedrooms)),
	) {
		// Proceeding without a bedroom choice risks booking the site's
		// default package; soft by policy, recorded for the caller.
		w.warnf("bedroom_select", "no option matched %q for %d bedrooms", pattern, task.Bedrooms)
	}
	w.WaitForIdle()

	return w.FinalizeService(isLast)
}
