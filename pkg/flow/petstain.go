package flow

import (
	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/locator"
)

func init() {
	Register(&petStainDriver{})
}

type petStainDriver struct{}

func (d *petStainDriver) Kind() booking.TaskKind {
	return booking.TaskPetStain
}

// petStainCandidates are the four label variants the add-on has shipped
// under.
var petStainCandidates = []locator.Candidate{
	locator.ByRole("button", `Pet (Urine|Stain)`),
	locator.ByText(`Pet (Urine|Stain) (&|and) Odor`),
	locator.ByText("Pet Odor Removal"),
	locator.ByText("Pet Treatment"),
}

func (d *petStainDriver) Apply(w *Wizard, task booking.Task, isLast bool) error {
	if !w.Click(petStainCandidates...) {
		// The add-on only renders in some configurations; its absence does
		// not block the rest of the queue.
		w.warnf("pet_stain", "add-on not found (tried %s)", locator.Describe(petStainCandidates))
	}
	w.WaitForIdle()

	return w.FinalizeService(isLast)
}
