// Package booking holds the booking aggregate and the rules for moving it
// through the wizard steps.
package booking

import (
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
)

// State is the whole booking aggregate at one point in time. Values are
// treated as immutable: transitions return a new State.
type State struct {
	Step     Step               `json:"step"`
	Service  *catalog.Service   `json:"service"`
	Staff    StaffChoice        `json:"staff"`
	Date     *calendar.Date     `json:"date"`
	TimeSlot *calendar.TimeSlot `json:"time_slot"`
	Customer CustomerDetails    `json:"customer"`
}

// Initial is the empty aggregate a session starts from and returns to on
// confirmation.
func Initial() State {
	return State{Step: FirstStep}
}

// Patch is a partial change. Nil fields leave the previous value in place.
type Patch struct {
	Step     *Step
	Service  *catalog.Service
	Staff    *StaffChoice
	Date     *calendar.Date
	TimeSlot *calendar.TimeSlot
	Customer *CustomerDetails
}

// Apply overlays p on prev and returns the resulting aggregate. prev is not
// modified and the result shares no pointers with p.
func Apply(prev State, p Patch) State {
	next := prev
	if p.Step != nil && p.Step.Valid() {
		next.Step = *p.Step
	}
	if p.Service != nil {
		svc := *p.Service
		next.Service = &svc
	}
	if p.Staff != nil {
		next.Staff = *p.Staff
	}
	if p.Date != nil {
		d := *p.Date
		next.Date = &d
	}
	if p.TimeSlot != nil {
		slot := *p.TimeSlot
		next.TimeSlot = &slot
	}
	if p.Customer != nil {
		next.Customer = *p.Customer
	}
	return next
}

// Advance moves to the next stage, staying on the last one. It does not
// check preconditions; see Precondition.
func Advance(s State) State {
	step := s.Step.Next()
	return Apply(s, Patch{Step: &step})
}

// Retreat moves to the previous stage, staying on the first one.
func Retreat(s State) State {
	step := s.Step.Prev()
	return Apply(s, Patch{Step: &step})
}

// Confirm ends the flow. Nothing about the finished booking is retained.
func Confirm(State) State {
	return Initial()
}

// Precondition reports whether the current stage has what it needs before
// the flow may advance. Staff and confirmation stages have no requirement.
func Precondition(s State) error {
	switch s.Step {
	case StepService:
		if s.Service == nil {
			return &PreconditionError{Step: s.Step, Missing: []string{"service"}, err: ErrServiceRequired}
		}
	case StepDateTime:
		var missing []string
		if s.Date == nil {
			missing = append(missing, "date")
		}
		if s.TimeSlot == nil {
			missing = append(missing, "time_slot")
		}
		if len(missing) > 0 {
			return &PreconditionError{Step: s.Step, Missing: missing, err: ErrDateTimeRequired}
		}
	case StepDetails:
		if missing := s.Customer.Missing(); len(missing) > 0 {
			return &PreconditionError{Step: s.Step, Missing: missing, err: ErrDetailsIncomplete}
		}
	}
	return nil
}

func CanAdvance(s State) bool {
	return Precondition(s) == nil
}

// Ready reports whether s holds a bookable appointment: every stage's
// requirement is met and the staff choice was committed. The first unmet
// stage is returned as a PreconditionError.
func Ready(s State) error {
	for _, step := range []Step{StepService, StepStaff, StepDateTime, StepDetails} {
		check := s
		check.Step = step
		if step == StepStaff {
			if s.Staff.IsUnset() {
				return &PreconditionError{Step: step, Missing: []string{"staff"}, err: ErrStaffRequired}
			}
			continue
		}
		if err := Precondition(check); err != nil {
			return err
		}
	}
	return nil
}
