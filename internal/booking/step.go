package booking

import "fmt"

// Step is one stage of the booking flow. The set is closed and totally
// ordered; Next and Prev saturate at the ends.
type Step uint8

const (
	StepService Step = iota
	StepStaff
	StepDateTime
	StepDetails
	StepConfirmation
)

const (
	FirstStep = StepService
	LastStep  = StepConfirmation
)

var stepNames = [...]string{
	StepService:      "service",
	StepStaff:        "staff",
	StepDateTime:     "datetime",
	StepDetails:      "details",
	StepConfirmation: "confirmation",
}

var stepLabels = [...]string{
	StepService:      "Service",
	StepStaff:        "Professional",
	StepDateTime:     "Time",
	StepDetails:      "Details",
	StepConfirmation: "Review",
}

// Steps lists every stage in flow order.
func Steps() []Step {
	return []Step{StepService, StepStaff, StepDateTime, StepDetails, StepConfirmation}
}

func (s Step) Valid() bool {
	return s <= LastStep
}

// Next returns the following stage, or LastStep when already there.
func (s Step) Next() Step {
	if s >= LastStep {
		return LastStep
	}
	return s + 1
}

// Prev returns the preceding stage, or FirstStep when already there.
func (s Step) Prev() Step {
	if s == FirstStep || !s.Valid() {
		return FirstStep
	}
	return s - 1
}

// Index is the zero-based position in the flow.
func (s Step) Index() int {
	return int(s)
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", uint8(s))
	}
	return stepNames[s]
}

// Label is the short progress-indicator title for the stage.
func (s Step) Label() string {
	if !s.Valid() {
		return ""
	}
	return stepLabels[s]
}

// ParseStep resolves a stage from its String form.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return FirstStep, fmt.Errorf("%w: %q", ErrInvalidStep, name)
}

func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	parsed, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
