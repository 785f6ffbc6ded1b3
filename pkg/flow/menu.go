package flow

import (
	"fmt"
	"regexp"

	"github.com/mkershaw/bookpilot/pkg/locator"
)

// serviceTileCandidates builds the fallback ladder for a named service tile
// on the main menu: semantic role first, then structural hooks, then text
// ancestry, then a raw text click.
func serviceTileCandidates(name string) []locator.Candidate {
	quoted := regexp.QuoteMeta(name)
	return []locator.Candidate{
		locator.ByRole("button", quoted),
		locator.ByCSS(fmt.Sprintf(`button:has-text("%s")`, name)),
		locator.ByCSS(fmt.Sprintf(`[role="button"]:has-text("%s")`, name)),
		locator.ByCSS(fmt.Sprintf(`.service-card:has-text("%s")`, name)),
		locator.ByCSS(fmt.Sprintf(`xpath=//*[contains(text(), "%s")]/ancestor::button[1]`, name)),
		locator.ByText(quoted),
	}
}

// OpenService clicks a named service tile on the main menu. An unselectable
// required service makes the whole task unrecoverable, so exhausting the
// ladder is fatal.
func (w *Wizard) OpenService(name string) error {
	candidates := serviceTileCandidates(name)
	if !w.Click(candidates...) {
		return fatalf("select_service", "service tile %q not clickable (tried %s)",
			name, locator.Describe(candidates))
	}
	w.Log.Info().Str("service", name).Msg("opened service detail")
	w.WaitForIdle()
	return nil
}

// TryOpenService is the soft variant used where the tile itself is optional.
func (w *Wizard) TryOpenService(name string) bool {
	if !w.Click(serviceTileCandidates(name)...) {
		return false
	}
	w.WaitForIdle()
	return true
}
