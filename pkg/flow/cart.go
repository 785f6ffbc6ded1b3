package flow

import "github.com/mkershaw/bookpilot/pkg/locator"

// cartRegionCandidates locate the cart drawer's text region, used for the
// click-away dismissal strategy.
var cartRegionCandidates = []locator.Candidate{
	locator.ByText("Shopping Cart"),
	locator.ByText("Your Cart"),
}

// DismissCartDrawer closes the cart drawer if one is open. The drawer can
// overlay and block subsequent clicks, so the drivers call this defensively
// before and after adding to the booking. Strategies in priority order:
// close control, testid close, click-away, Escape. Always soft.
func (w *Wizard) DismissCartDrawer() bool {
	if w.Click(
		locator.ByRole("button", "close"),
		locator.ByCSS(`.cart-drawer button[aria-label="Close"]`),
		locator.ByCSS(`[aria-label="Close cart"]`),
	) {
		return true
	}

	if w.Click(locator.ByTestID("cart-drawer-close")) {
		return true
	}

	// Click away from the drawer region so the overlay loses focus.
	if _, ok := locator.ResolveVisible(w.Page, cartRegionCandidates); ok {
		if err := w.Page.MouseClick(5, 5); err == nil {
			return true
		}
	}

	if err := w.Page.PressKey("Escape"); err == nil {
		return true
	}

	return false
}
