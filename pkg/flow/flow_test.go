package flow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mkershaw/bookpilot/pkg/actions"
	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/browser/browsertest"
	"github.com/mkershaw/bookpilot/pkg/flow"
	"github.com/mkershaw/bookpilot/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimings() actions.Timings {
	return actions.Timings{
		Click:      50 * time.Millisecond,
		Fill:       50 * time.Millisecond,
		IdleSettle: time.Millisecond,
		LoadState:  50 * time.Millisecond,
		MainMenu:   30 * time.Millisecond,
		Poll:       time.Millisecond,
		EnableWait: 30 * time.Millisecond,
		OptionWait: 30 * time.Millisecond,
		VerifyWait: 30 * time.Millisecond,
	}
}

func newWizard(page *browsertest.Page, req *booking.BookingRequest) *flow.Wizard {
	if req == nil {
		req = &booking.BookingRequest{}
	}
	return flow.NewWizard(page, log.Nop(), req, testTimings())
}

func stepOf(t *testing.T, err error) string {
	t.Helper()
	var stepErr *flow.StepError
	require.ErrorAs(t, err, &stepErr)
	return stepErr.Step
}

// addContactsScreen registers the controls the non-last loop-back needs after
// Book Service.
func addContactsScreen(page *browsertest.Page) {
	page.AddButton("Back", nil)
	page.AddButton("Add more services", nil)
}

func TestOpenServiceFatalWhenTileMissing(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, nil)

	err := w.OpenService("Carpet Cleaning")
	assert.Equal(t, "select_service", stepOf(t, err))
}

func TestFinalizeServiceProceedsWithoutAddToBooking(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	require.NoError(t, w.FinalizeService(false))
	assert.Contains(t, page.Clicks, "Book Service")
	require.Len(t, w.Warnings, 1)
	assert.Contains(t, w.Warnings[0], "add_to_booking")
}

func TestFinalizeServiceFatalWithoutBookService(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Add to booking", nil)
	w := newWizard(page, nil)

	err := w.FinalizeService(false)
	assert.Equal(t, "book_service", stepOf(t, err))
}

func TestFinalizeServiceContinueIsBookServiceEquivalent(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Add to booking", nil)
	page.AddButton("Continue", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	require.NoError(t, w.FinalizeService(false))
	assert.Contains(t, page.Clicks, "Continue")
	assert.Empty(t, w.Warnings)
}

func TestReturnToMenuFallsBackToHistory(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Book Service", nil)
	// No Back control and no Add-more-services control.
	w := newWizard(page, nil)

	require.NoError(t, w.FinalizeService(false))
	assert.Equal(t, 1, page.BackCount)
	require.Len(t, w.Warnings, 2)
	assert.Contains(t, w.Warnings[0], "add_to_booking")
	assert.Contains(t, w.Warnings[1], "add_more_services")
}

func TestDismissCartDrawerClickAway(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{Text: "Shopping Cart"})
	w := newWizard(page, nil)

	assert.True(t, w.DismissCartDrawer())
	assert.Equal(t, [][2]float64{{5, 5}}, page.MouseClicks)
	assert.Empty(t, page.Keys)
}

func TestDismissCartDrawerEscapeFallback(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, nil)

	assert.True(t, w.DismissCartDrawer())
	assert.Equal(t, []string{"Escape"}, page.Keys)
}

func TestCarpetCleaningBedroomFallbackIsSoft(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Carpet Cleaning", nil)
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskCarpetCleaning)
	require.NoError(t, err)

	err = driver.Apply(w, booking.Task{Kind: booking.TaskCarpetCleaning, Bedrooms: 3}, false)
	require.NoError(t, err)
	require.Len(t, w.Warnings, 2)
	assert.Contains(t, w.Warnings[0], "bedroom_select")
	assert.Contains(t, w.Warnings[1], "add_to_booking")
}

func TestCarpetCleaningSelectsBedroomOption(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Carpet Cleaning", nil)
	page.AddButton("3 Bedrooms", nil)
	page.AddButton("Add to booking", nil)
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskCarpetCleaning)
	require.NoError(t, err)

	require.NoError(t, driver.Apply(w, booking.Task{Kind: booking.TaskCarpetCleaning, Bedrooms: 3}, false))
	assert.Contains(t, page.Clicks, "3 Bedrooms")
	assert.Empty(t, w.Warnings)
}

func TestUpholsteryItemNotFoundIsFatal(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Upholstery Cleaning", nil)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskUpholstery)
	require.NoError(t, err)

	err = driver.Apply(w, booking.Task{
		Kind:     booking.TaskUpholstery,
		ItemKey:  "couch",
		Label:    "Couch Cleaning",
		Quantity: 1,
	}, true)
	assert.Equal(t, "upholstery_item", stepOf(t, err))
	assert.NotEmpty(t, page.Evaluated, "the catalog search scrolls before giving up")
}

func TestUpholsteryScrollRevealsItem(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Upholstery Cleaning", nil)
	page.AddButton("Add to booking", nil)
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	qty := page.Add(&browsertest.Node{Selectors: []string{`[data-testid="quantity-input"]`}})

	// The item only renders after one scroll, like a virtualized list.
	item := page.Add(&browsertest.Node{Role: "button", Name: "Couch Cleaning", Removed: true})
	page.OnEvaluate = func(p *browsertest.Page, expression string) {
		item.Removed = false
	}

	w := newWizard(page, nil)
	driver, err := flow.ForTask(booking.TaskUpholstery)
	require.NoError(t, err)

	require.NoError(t, driver.Apply(w, booking.Task{
		Kind:     booking.TaskUpholstery,
		ItemKey:  "couch",
		Label:    "Couch Cleaning",
		Quantity: 2,
	}, false))
	assert.Contains(t, page.Clicks, "Couch Cleaning")
	assert.Equal(t, "2", qty.Value)
}

func TestPetStainAbsenceIsSoft(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskPetStain)
	require.NoError(t, err)

	require.NoError(t, driver.Apply(w, booking.Task{Kind: booking.TaskPetStain}, false))
	assert.Contains(t, w.Warnings[0], "pet_stain")
}

func TestPetStainLabelVariants(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "addon", Text: "Pet Urine & Odor Treatment"})
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskPetStain)
	require.NoError(t, err)

	require.NoError(t, driver.Apply(w, booking.Task{Kind: booking.TaskPetStain}, false))
	assert.Contains(t, page.Clicks, "addon")
}

func TestCarpetStretchingUnderRepairCategory(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Carpet Repair", nil)
	page.AddButton("Carpet Stretching", nil)
	page.AddButton("Add to booking", nil)
	page.AddButton("Book Service", nil)
	addContactsScreen(page)
	w := newWizard(page, nil)

	driver, err := flow.ForTask(booking.TaskCarpetStretching)
	require.NoError(t, err)

	require.NoError(t, driver.Apply(w, booking.Task{Kind: booking.TaskCarpetStretching}, false))
	assert.Contains(t, page.Clicks, "Carpet Repair")
	assert.Contains(t, page.Clicks, "Carpet Stretching")
}

func TestFillContactFormFatalWithoutSubmit(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, &booking.BookingRequest{FirstName: "Jane"})

	err := w.FillContactForm()
	assert.Equal(t, "contact_submit", stepOf(t, err))
	assert.Contains(t, w.Warnings[0], "contact_form")
}

func TestFillContactFormFieldLadder(t *testing.T) {
	page := browsertest.NewPage()
	first := page.Add(&browsertest.Node{Selectors: []string{`[data-testid="first-name"]`}})
	email := page.Add(&browsertest.Node{Label: "Email"})
	phone := page.Add(&browsertest.Node{Selectors: []string{`input[autocomplete="tel"]`}})
	page.Add(&browsertest.Node{Role: "checkbox"})
	page.AddButton("Submit", nil)

	w := newWizard(page, &booking.BookingRequest{
		FirstName: "Jane",
		Email:     "jane@example.com",
		Phone:     "555-0100",
	})

	require.NoError(t, w.FillContactForm())
	assert.Equal(t, "Jane", first.Value)
	assert.Equal(t, "jane@example.com", email.Value)
	assert.Equal(t, "555-0100", phone.Value)
	assert.Empty(t, w.Warnings)
}

func TestStateComboboxPrefersExactCode(t *testing.T) {
	page := browsertest.NewPage()
	box := page.Add(&browsertest.Node{ID: "state-box", Role: "combobox", Selectors: []string{`[data-testid="state"]`}})
	box.OnFill = func(p *browsertest.Page, n *browsertest.Node, value string) {
		p.Add(&browsertest.Node{ID: "option-code", Role: "option", Name: "OR", Text: "OR"})
		p.Add(&browsertest.Node{ID: "option-name", Role: "option", Name: "Oregon", Text: "Oregon"})
	}
	page.Add(&browsertest.Node{Role: "checkbox"})
	page.AddButton("Submit", nil)

	w := newWizard(page, &booking.BookingRequest{State: "OR"})
	require.NoError(t, w.FillContactForm())

	assert.Contains(t, page.Clicks, "option-code")
	assert.NotContains(t, page.Clicks, "option-name")
}

func TestStateComboboxFullNameFallback(t *testing.T) {
	page := browsertest.NewPage()
	box := page.Add(&browsertest.Node{ID: "state-box", Role: "combobox", Selectors: []string{`[data-testid="state"]`}})
	box.OnFill = func(p *browsertest.Page, n *browsertest.Node, value string) {
		if value == "OR" {
			p.Add(&browsertest.Node{ID: "option-name", Role: "option", Name: "Oregon", Text: "Oregon"})
		}
	}
	page.Add(&browsertest.Node{Role: "checkbox"})
	page.AddButton("Submit", nil)

	w := newWizard(page, &booking.BookingRequest{State: "OR"})
	require.NoError(t, w.FillContactForm())

	assert.Equal(t, "OR", box.Value, "the code is typed first")
	assert.Contains(t, page.Clicks, "option-name", "full state name option selected when no code option exists")
	assert.Empty(t, w.Warnings)
}

func TestSelectDatePagesForwardThroughMonths(t *testing.T) {
	page := browsertest.NewPage()
	next := page.Add(&browsertest.Node{ID: "next-month", Selectors: []string{`[aria-label="Next month"]`}})
	next.OnClick = func(p *browsertest.Page, n *browsertest.Node) {
		p.AddButton("Wed, Oct 8", nil)
	}

	w := newWizard(page, &booking.BookingRequest{AppointmentDate: "10/08/2025"})
	w.SelectDate()

	assert.Equal(t, []string{"next-month", "Wed, Oct 8"}, page.Clicks)
	assert.Empty(t, w.Warnings)
}

func TestSelectDateGivesUpAfterMonthBudget(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "next-month", Selectors: []string{`[aria-label="Next month"]`}})

	w := newWizard(page, &booking.BookingRequest{AppointmentDate: "10/08/2025"})
	w.SelectDate()

	require.Len(t, w.Warnings, 1)
	assert.Contains(t, w.Warnings[0], "date_select")
}

func TestSelectDateUnparseableIsSoft(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, &booking.BookingRequest{AppointmentDate: "next Tuesday"})
	w.SelectDate()

	require.Len(t, w.Warnings, 1)
	assert.Contains(t, w.Warnings[0], "unparseable")
}

func TestSelectTimeWindowAnchoredToStart(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "slot-0", Text: "12:00 - 2:00pm", Selectors: []string{`[data-testid="time-slot"]`}})
	page.Add(&browsertest.Node{ID: "slot-1", Text: "2:00 - 4:00pm", Selectors: []string{`[data-testid="time-slot"]`}})

	w := newWizard(page, &booking.BookingRequest{TimeFrameStart: "2:00 PM"})
	w.SelectTimeWindow()

	assert.Equal(t, []string{"slot-1"}, page.Clicks, "2:00 must not match the tail of 12:00 - 2:00pm")
	assert.Empty(t, w.Warnings)
}

func TestSelectTimeWindowNoMatchIsSoft(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "slot-0", Text: "9:00 - 11:00am", Selectors: []string{`[data-testid="time-slot"]`}})

	w := newWizard(page, &booking.BookingRequest{TimeFrameStart: "2:00 PM"})
	w.SelectTimeWindow()

	assert.Empty(t, page.Clicks)
	require.Len(t, w.Warnings, 1)
	assert.Contains(t, w.Warnings[0], "time_select")
}

func TestClickScheduleNextClicksOnceEnabled(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "next", Role: "button", Name: "Next"})

	w := newWizard(page, nil)
	w.ClickScheduleNext()

	assert.Equal(t, []string{"next"}, page.Clicks)
	assert.Empty(t, w.Warnings)
}

func TestClickScheduleNextNeverEnables(t *testing.T) {
	page := browsertest.NewPage()
	page.Add(&browsertest.Node{ID: "next", Role: "button", Name: "Next", Disabled: true})

	w := newWizard(page, nil)
	w.ClickScheduleNext()

	assert.Empty(t, page.Clicks)
	require.Len(t, w.Warnings, 1)
	assert.Contains(t, w.Warnings[0], "never enabled")
}

func TestConfirmBookingExactLabelFirst(t *testing.T) {
	page := browsertest.NewPage()
	page.AddButton("Book my appointment", func(p *browsertest.Page, n *browsertest.Node) {
		p.Add(&browsertest.Node{Text: "Thank you for booking!"})
	})

	w := newWizard(page, nil)
	require.NoError(t, w.ConfirmBooking())
	assert.Equal(t, []string{"Book my appointment"}, page.Clicks)
	assert.True(t, w.VerifySuccess())
}

func TestConfirmBookingCSSFallback(t *testing.T) {
	page := browsertest.NewPage()
	primary := page.Add(&browsertest.Node{ID: "primary", Selectors: []string{`.MuiButton-containedPrimary`}})
	primary.OnClick = func(p *browsertest.Page, n *browsertest.Node) {
		p.Add(&browsertest.Node{Text: "Your booking is confirmed."})
	}

	w := newWizard(page, nil)
	require.NoError(t, w.ConfirmBooking())
	assert.Equal(t, []string{"primary"}, page.Clicks)
}

func TestConfirmBookingIgnoresIneffectiveClicks(t *testing.T) {
	page := browsertest.NewPage()
	// A labeled button whose click changes nothing observable, and a CSS
	// fallback that actually completes the booking.
	page.AddButton("Confirm", nil)
	primary := page.Add(&browsertest.Node{ID: "primary", Selectors: []string{`.MuiButton-containedPrimary`}})
	primary.OnClick = func(p *browsertest.Page, n *browsertest.Node) {
		p.URLValue = "https://fake.test/booking/confirmed"
	}

	w := newWizard(page, nil)
	require.NoError(t, w.ConfirmBooking())
	assert.Equal(t, []string{"Confirm", "primary"}, page.Clicks)
}

func TestConfirmBookingExhaustedIsFatal(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, nil)

	err := w.ConfirmBooking()
	assert.Equal(t, "final_confirmation", stepOf(t, err))
}

func TestConfirmBookingRepairsRequiredCheckbox(t *testing.T) {
	page := browsertest.NewPage()
	box := page.Add(&browsertest.Node{ID: "consent", Selectors: []string{`input[type="checkbox"][required]`}})
	box.OnClick = func(p *browsertest.Page, n *browsertest.Node) { n.Checked = true }
	page.AddButton("Confirm", func(p *browsertest.Page, n *browsertest.Node) {
		p.Add(&browsertest.Node{Text: "Thank you!"})
	})

	w := newWizard(page, nil)
	require.NoError(t, w.ConfirmBooking())
	assert.Equal(t, []string{"consent", "Confirm"}, page.Clicks)
	assert.True(t, box.Checked)
}

func TestVerifySuccessTitleFallback(t *testing.T) {
	page := browsertest.NewPage()
	page.TitleValue = "Booking Confirmed!"

	w := newWizard(page, nil)
	assert.True(t, w.VerifySuccess())
}

func TestVerifySuccessTimesOut(t *testing.T) {
	page := browsertest.NewPage()
	w := newWizard(page, nil)
	assert.False(t, w.VerifySuccess())
}

func TestForTaskUnknownKind(t *testing.T) {
	_, err := flow.ForTask(booking.TaskKind("duct_cleaning"))
	assert.Error(t, err)
}

func TestStepErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &flow.StepError{Step: "x", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), `step "x"`)
}
