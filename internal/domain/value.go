package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueState distinguishes the three states a period value can be in.
type ValueState uint8

const (
	// NotProvided means the user left the cell blank or it held nothing usable.
	NotProvided ValueState = iota
	// NotApplicable means the field has no meaning for the period.
	NotApplicable
	// Provided means Number holds a typed value.
	Provided
)

// NotApplicableToken is how NotApplicable values are serialized.
const NotApplicableToken = "N/A"

// Value is a three-valued period cell: a number, "not applicable", or
// "not provided".
type Value struct {
	State  ValueState
	Number float64
}

// Number returns a provided value.
func Number(n float64) Value {
	return Value{State: Provided, Number: n}
}

// NA returns the not-applicable marker.
func NA() Value {
	return Value{State: NotApplicable}
}

// Missing returns the not-provided marker.
func Missing() Value {
	return Value{}
}

// IsNumber reports whether v carries a number.
func (v Value) IsNumber() bool { return v.State == Provided }

// IsNA reports whether v is the not-applicable marker.
func (v Value) IsNA() bool { return v.State == NotApplicable }

// IsMissing reports whether v is "not provided".
func (v Value) IsMissing() bool { return v.State == NotProvided }

// Float returns the number and whether one is present.
func (v Value) Float() (float64, bool) {
	if v.State != Provided {
		return 0, false
	}
	return v.Number, true
}

func (v Value) String() string {
	switch v.State {
	case Provided:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case NotApplicable:
		return NotApplicableToken
	default:
		return "<missing>"
	}
}

// MarshalJSON encodes numbers as JSON numbers, NotApplicable as "N/A" and
// NotProvided as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.State {
	case Provided:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return nil, fmt.Errorf("value %v cannot be encoded", v.Number)
		}
		return []byte(strconv.FormatFloat(v.Number, 'g', -1, 64)), nil
	case NotApplicable:
		return json.Marshal(NotApplicableToken)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reverses MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Missing()
		return nil
	case len(data) > 0 && data[0] == '"':
		var token string
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
		if token != NotApplicableToken {
			return fmt.Errorf("unexpected value token %q", token)
		}
		*v = NA()
		return nil
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid period value %s: %w", data, err)
		}
		*v = Number(n)
		return nil
	}
}
