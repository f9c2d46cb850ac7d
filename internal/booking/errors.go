package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStep       = errors.New("booking: invalid step")
	ErrServiceRequired   = errors.New("booking: a service must be selected")
	ErrStaffRequired     = errors.New("booking: a staff choice must be made")
	ErrDateTimeRequired  = errors.New("booking: a date and time slot must be selected")
	ErrDetailsIncomplete = errors.New("booking: name, email and phone are required")
	ErrUnknownField      = errors.New("booking: unknown customer field")
)

// PreconditionError reports why the flow cannot leave Step yet.
type PreconditionError struct {
	Step    Step
	Missing []string
	err     error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s (missing: %s)", e.err.Error(), strings.Join(e.Missing, ", "))
}

func (e *PreconditionError) Unwrap() error {
	return e.err
}
