package flow

import "github.com/mkershaw/bookpilot/pkg/locator"

var addToBookingCandidates = []locator.Candidate{
	locator.ByRole("button", "Add to booking"),
	locator.ByTextExact("Add to booking"),
	locator.ByText("Add to Booking"),
	locator.ByCSS(`button:has-text("Add to booking")`),
}

var bookServiceCandidates = []locator.Candidate{
	locator.ByRole("button", "Book Service"),
	locator.ByRole("button", "^Continue$"),
	locator.ByTextExact("Book Service"),
	locator.ByTextExact("Continue"),
	locator.ByCSS(`button:has-text("Book Service")`),
}

var backCandidates = []locator.Candidate{
	locator.ByRole("button", "^Back$"),
	locator.ByCSS(`[aria-label="Back"]`),
	locator.ByCSS(`button:has-text("Back")`),
}

var addMoreServicesCandidates = []locator.Candidate{
	locator.ByRole("button", "Add more services"),
	locator.ByText("Add more services"),
	locator.ByText("Add another service"),
}

// FinalizeService is the shared tail every task runs after configuring its
// service: dismiss the drawer, add to booking, dismiss again, then reach the
// contacts screen via Book Service/Continue. Failing to reach that screen is
// fatal; everything before it is best-effort.
//
// Non-last tasks then navigate back to the main menu for the next queue item.
// The last task proceeds through the full checkout.
func (w *Wizard) FinalizeService(isLast bool) error {
	w.DismissCartDrawer()

	if !w.Click(addToBookingCandidates...) {
		w.warnf("add_to_booking", "control absent, proceeding")
	}
	w.WaitForIdle()

	w.DismissCartDrawer()

	if !w.Click(bookServiceCandidates...) {
		return fatalf("book_service", "neither Book Service nor Continue reachable (tried %s)",
			locator.Describe(bookServiceCandidates))
	}
	w.WaitForIdle()

	if !isLast {
		w.returnToMenu()
		return nil
	}

	return w.Checkout()
}

// returnToMenu leaves the contacts screen and re-opens the service menu so
// the next queue item can be added. Both steps are best-effort; the
// orchestrator's menu wait catches the case where neither landed.
func (w *Wizard) returnToMenu() {
	if !w.Click(backCandidates...) {
		if err := w.Page.GoBack(); err != nil {
			w.warnf("contacts_back", "no back control and history back failed: %v", err)
		}
	}
	w.WaitForIdle()

	if !w.Click(addMoreServicesCandidates...) {
		w.warnf("add_more_services", "control absent, assuming menu is already shown")
	}
	w.WaitForIdle()
}
