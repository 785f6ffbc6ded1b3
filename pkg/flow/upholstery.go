package flow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

func init() {
	Register(&upholsteryDriver{})
}

type upholsteryDriver struct{}

func (d *upholsteryDriver) Kind() booking.TaskKind {
	return booking.TaskUpholstery
}

// catalogScrollBudget bounds the scroll-search through the upholstery
// catalog. Each iteration scrolls one viewport chunk before re-probing.
const catalogScrollBudget = 8

const catalogScrollJS = `window.scrollBy(0, 600)`

// baseName strips a trailing "Clean"/"Cleaning" suffix from a catalog label,
// since some catalog revisions drop it ("Couch" vs "Couch Cleaning").
func baseName(label string) string {
	trimmed := strings.TrimSpace(label)
	for _, suffix := range []string{" Cleaning", " Clean", " cleaning", " clean"} {
		if strings.HasSuffix(trimmed, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(trimmed, suffix))
		}
	}
	return trimmed
}

func catalogItemCandidates(label string) []locator.Candidate {
	base := regexp.QuoteMeta(baseName(label))
	full := regexp.QuoteMeta(label)
	return []locator.Candidate{
		locator.ByRole("button", full),
		locator.ByTextExact(label),
		locator.ByRole("button", base),
		locator.ByText(base),
		locator.ByCSS(fmt.Sprintf(`.catalog-item:has-text("%s")`, baseName(label))),
	}
}

func (d *upholsteryDriver) Apply(w *Wizard, task booking.Task, isLast bool) error {
	if err := w.OpenService("Upholstery Cleaning"); err != nil {
		return err
	}

	candidates := catalogItemCandidates(task.Label)
	clicked := false
	for attempt := 0; attempt <= catalogScrollBudget; attempt++ {
		if w.Click(candidates...) {
			clicked = true
			break
		}
		// Not rendered yet; the catalog virtualizes long lists, so scroll
		// and probe again.
		if _, err := w.Page.Evaluate(catalogScrollJS); err != nil {
			w.Log.Debug().Err(err).Msg("catalog scroll failed")
		}
		w.Page.Pause(w.Timings.Poll)
	}
	if !clicked {
		// An unselected item would check out an empty or wrong cart.
		return fatalf("upholstery_item", "catalog item %q not found after %d scroll probes (tried %s)",
			task.Label, catalogScrollBudget, locator.Describe(candidates))
	}
	w.Log.Info().Str("item", task.Label).Int("quantity", task.Quantity).Msg("selected upholstery item")
	w.WaitForIdle()

	if task.Quantity > 1 {
		if !w.SetQuantity(task.Quantity) {
			w.warnf("upholstery_quantity", "could not set quantity %d for %q", task.Quantity, task.Label)
		}
	}

	return w.FinalizeService(isLast)
}
