package flow

import (
	"time"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

// monthPageBudget bounds how many "next month" clicks the date search makes
// when the requested day is not yet rendered.
const monthPageBudget = 3

var nextMonthCandidates = []locator.Candidate{
	locator.ByCSS(`[aria-label="Next month"]`),
	locator.ByRole("button", "next"),
	locator.ByCSS(`.calendar-next`),
}

// SelectDate locates the calendar day for the requested appointment date,
// paging forward through a bounded number of months if needed.
//
// Failure here is soft by policy, which is a known correctness gap: an
// unselected date proceeds to time selection and can compound into a wrong
// submission. The warning on the outcome is how the caller finds out.
func (w *Wizard) SelectDate() {
	date, ok := booking.ParseDate(w.Req.AppointmentDate)
	if !ok {
		w.warnf("date_select", "unparseable appointment date %q", w.Req.AppointmentDate)
		return
	}

	pattern := date.CalendarDayPattern()
	candidates := []locator.Candidate{
		locator.ByRole("button", pattern),
		locator.ByRole("gridcell", pattern),
		locator.ByText(pattern),
	}

	for page := 0; page <= monthPageBudget; page++ {
		if w.Click(candidates...) {
			w.Log.Info().Str("date", date.String()).Msg("selected appointment date")
			w.WaitForIdle()
			return
		}
		if page < monthPageBudget && !w.Click(nextMonthCandidates...) {
			break
		}
		w.Page.Pause(w.Timings.Poll)
	}
	w.warnf("date_select", "no calendar day matched %s", date.String())
}

var timeSlotCandidates = []locator.Candidate{
	locator.ByTestID("time-slot"),
	locator.ByRole("radio", ""),
	locator.ByCSS(`.time-slot`),
}

// SelectTimeWindow picks the arrival window whose start boundary matches the
// requested start time. Matching is anchored to the window start so a
// "2:00 PM" request never lands on "12:00 - 2:00pm". Soft on failure.
func (w *Wizard) SelectTimeWindow() {
	if w.Req.TimeFrameStart == "" {
		return
	}

	var matched bool
	for _, c := range timeSlotCandidates {
		group := c.Element(w.Page)
		labels, err := group.AllInnerTexts()
		if err != nil || len(labels) == 0 {
			continue
		}
		idx := booking.FindWindowStart(labels, w.Req.TimeFrameStart)
		if idx < 0 {
			continue
		}
		if err := group.Nth(idx).Click(w.Timings.Click); err != nil {
			w.Log.Debug().Err(err).Str("label", labels[idx]).Msg("time slot click failed")
			continue
		}
		w.Log.Info().Str("window", labels[idx]).Msg("selected arrival window")
		matched = true
		break
	}
	if !matched {
		w.warnf("time_select", "no window started at %q", w.Req.TimeFrameStart)
	}
	w.WaitForIdle()
}

var scheduleNextCandidates = []locator.Candidate{
	locator.ByRole("button", "^Next$"),
	locator.ByRole("button", "^Continue$"),
	locator.ByTextExact("Next"),
}

// ClickScheduleNext advances past the scheduling screen. The control stays
// disabled until a slot is chosen, so this polls for it to enable before
// clicking. Soft: if Next never enables, the confirmation ladder will fail
// loudly right after.
func (w *Wizard) ClickScheduleNext() {
	el, ok := locator.Resolve(w.Page, scheduleNextCandidates)
	if !ok {
		w.warnf("schedule_next", "no Next control found")
		return
	}

	deadline := time.Now().Add(w.Timings.EnableWait)
	for {
		enabled, err := el.IsEnabled()
		if err == nil && enabled {
			break
		}
		if time.Now().After(deadline) {
			w.warnf("schedule_next", "Next control never enabled within %s", w.Timings.EnableWait)
			return
		}
		time.Sleep(w.Timings.Poll)
	}

	if err := el.Click(w.Timings.Click); err != nil {
		w.warnf("schedule_next", "Next click failed: %v", err)
		return
	}
	w.WaitForIdle()
}
