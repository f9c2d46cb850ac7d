package booking

import (
	"encoding/json"
	"fmt"
)

type staffMode uint8

const (
	staffUnset staffMode = iota
	staffAny
	staffSpecific
)

// StaffChoice records the professional picked for the appointment. "Any
// available" is an explicit choice and is kept distinct from not having
// chosen yet. The zero value is unset.
type StaffChoice struct {
	mode    staffMode
	staffID string
}

// AnyStaff is the "Any Available" choice.
func AnyStaff() StaffChoice {
	return StaffChoice{mode: staffAny}
}

// SpecificStaff picks a named professional.
func SpecificStaff(id string) StaffChoice {
	return StaffChoice{mode: staffSpecific, staffID: id}
}

func (c StaffChoice) IsUnset() bool { return c.mode == staffUnset }

func (c StaffChoice) IsAny() bool { return c.mode == staffAny }

// StaffID returns the chosen professional, if a specific one was picked.
func (c StaffChoice) StaffID() (string, bool) {
	if c.mode != staffSpecific {
		return "", false
	}
	return c.staffID, true
}

func (c StaffChoice) String() string {
	switch c.mode {
	case staffAny:
		return "any"
	case staffSpecific:
		return "staff:" + c.staffID
	default:
		return "unset"
	}
}

type staffChoiceJSON struct {
	Mode    string `json:"mode"`
	StaffID string `json:"staff_id,omitempty"`
}

func (c StaffChoice) MarshalJSON() ([]byte, error) {
	out := staffChoiceJSON{Mode: "unset"}
	switch c.mode {
	case staffAny:
		out.Mode = "any"
	case staffSpecific:
		out.Mode = "specific"
		out.StaffID = c.staffID
	}
	return json.Marshal(out)
}

func (c *StaffChoice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = StaffChoice{}
		return nil
	}
	var in staffChoiceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Mode {
	case "", "unset":
		*c = StaffChoice{}
	case "any":
		*c = AnyStaff()
	case "specific":
		if in.StaffID == "" {
			return fmt.Errorf("booking: specific staff choice without staff_id")
		}
		*c = SpecificStaff(in.StaffID)
	default:
		return fmt.Errorf("booking: unknown staff choice mode %q", in.Mode)
	}
	return nil
}
