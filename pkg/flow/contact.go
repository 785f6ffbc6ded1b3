package flow

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

// contactField describes one text input on the contact screen with its
// per-field fallback ladder: testid, label, placeholder, then raw
// name/autocomplete attributes.
type contactField struct {
	name         string
	testID       string
	label        string
	placeholder  string
	nameAttr     string
	autocomplete string
}

var contactFields = []contactField{
	{name: "first_name", testID: "first-name", label: "First Name", placeholder: "First name", nameAttr: "firstName", autocomplete: "given-name"},
	{name: "last_name", testID: "last-name", label: "Last Name", placeholder: "Last name", nameAttr: "lastName", autocomplete: "family-name"},
	{name: "phone", testID: "phone", label: "Phone", placeholder: "Phone", nameAttr: "phone", autocomplete: "tel"},
	{name: "email", testID: "email", label: "Email", placeholder: "Email", nameAttr: "email", autocomplete: "email"},
	{name: "street_address", testID: "street-address", label: "Street Address", placeholder: "Address", nameAttr: "address", autocomplete: "street-address"},
	{name: "city", testID: "city", label: "City", placeholder: "City", nameAttr: "city", autocomplete: "address-level2"},
	{name: "zip", testID: "zip", label: "ZIP", placeholder: "ZIP", nameAttr: "zip", autocomplete: "postal-code"},
}

func (f contactField) candidates() []locator.Candidate {
	return []locator.Candidate{
		locator.ByTestID(f.testID),
		locator.ByLabel(f.label),
		locator.ByCSS(fmt.Sprintf(`input[placeholder*="%s" i]`, f.placeholder)),
		locator.ByCSS(fmt.Sprintf(`input[name="%s"]`, f.nameAttr)),
		locator.ByCSS(fmt.Sprintf(`input[autocomplete="%s"]`, f.autocomplete)),
	}
}

func (f contactField) value(req *booking.BookingRequest) string {
	switch f.name {
	case "first_name":
		return req.FirstName
	case "last_name":
		return req.LastName
	case "phone":
		return req.Phone
	case "email":
		return req.Email
	case "street_address":
		return req.StreetAddress
	case "city":
		return req.City
	case "zip":
		return req.Zip
	default:
		return ""
	}
}

var consentCandidates = []locator.Candidate{
	locator.ByRole("checkbox", ""),
	locator.ByCSS(`input[type="checkbox"]`),
	locator.ByText("I agree"),
}

var submitContactCandidates = []locator.Candidate{
	locator.ByRole("button", "^Submit$"),
	locator.ByRole("button", "^Continue$"),
	locator.ByRole("button", "^Next$"),
	locator.ByCSS(`button[type="submit"]`),
	locator.ByTextExact("Submit"),
}

// FillContactForm fills the contact screen field by field. Each text field is
// independently best-effort; the state combobox has its own fallback
// protocol; only failing to trigger submission is fatal.
func (w *Wizard) FillContactForm() error {
	for _, f := range contactFields {
		value := f.value(w.Req)
		if value == "" {
			continue
		}
		if !w.Fill(value, f.candidates()...) {
			w.warnf("contact_form", "field %s not fillable", f.name)
		}
	}

	if w.Req.State != "" {
		w.selectState(w.Req.State)
	}

	if !w.Click(consentCandidates...) {
		w.warnf("consent_checkbox", "consent checkbox not found")
	}

	if !w.Click(submitContactCandidates...) {
		return fatalf("contact_submit", "no submit-equivalent control found (tried %s)",
			locator.Describe(submitContactCandidates))
	}
	w.WaitForIdle()
	return nil
}

var stateBoxCandidates = []locator.Candidate{
	locator.ByTestID("state"),
	locator.ByLabel("State"),
	locator.ByRole("combobox", "State"),
	locator.ByCSS(`input[name="state"]`),
}

// selectState drives the searchable state combobox: open it, type the
// two-letter code, then prefer an option matching the code exactly, else the
// full state name, else accept the top suggestion with Enter, else retype the
// full name as a last resort. All outcomes short of a selection are soft.
func (w *Wizard) selectState(code string) {
	if !w.Click(stateBoxCandidates...) {
		w.warnf("state_select", "state selector not found")
		return
	}
	if !w.Fill(code, stateBoxCandidates...) {
		w.warnf("state_select", "could not type state code %q", code)
		return
	}

	if !w.waitForOptions() {
		w.warnf("state_select", "no options rendered for %q", code)
	}

	if w.Click(locator.ByRoleExact("option", code), locator.ByTextExact(code)) {
		return
	}

	fullName := booking.StateName(code)
	if fullName != "" {
		if w.Click(
			locator.ByRoleExact("option", fullName),
			locator.ByRole("option", regexp.QuoteMeta(fullName)),
			locator.ByText(regexp.QuoteMeta(fullName)),
		) {
			return
		}
	}

	if err := w.Page.PressKey("Enter"); err == nil && w.stateOptionsClosed() {
		return
	}

	if fullName != "" && w.Fill(fullName, stateBoxCandidates...) {
		w.Page.PressKey("Enter")
		return
	}
	w.warnf("state_select", "all strategies exhausted for %q", code)
}

var stateOptionCandidates = []locator.Candidate{
	locator.ByRole("option", ""),
	locator.ByCSS(`[role="option"]`),
	locator.ByCSS(`.select-option`),
}

// waitForOptions polls for the combobox options list to render.
func (w *Wizard) waitForOptions() bool {
	deadline := time.Now().Add(w.Timings.OptionWait)
	for {
		if _, ok := locator.Resolve(w.Page, stateOptionCandidates); ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(w.Timings.Poll)
	}
}

func (w *Wizard) stateOptionsClosed() bool {
	_, open := locator.Resolve(w.Page, stateOptionCandidates)
	return !open
}
