package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidConfirmation is returned for an unknown confirmation value.
var ErrInvalidConfirmation = errors.New("invalid confirmation option")

// Confirmation controls whether a follow-up action asks the user first.
type Confirmation int

const (
	// AskEachTime prompts before acting.
	AskEachTime Confirmation = iota
	// AlwaysSilently acts without asking.
	AlwaysSilently
	// Never skips the action.
	Never
)

// String returns the persisted name.
func (c Confirmation) String() string {
	switch c {
	case AskEachTime:
		return "ask"
	case AlwaysSilently:
		return "silently"
	case Never:
		return "never"
	default:
		return "unknown"
	}
}

func (c Confirmation) valid() bool {
	return c >= AskEachTime && c <= Never
}

// ParseConfirmation parses a persisted name.
func ParseConfirmation(s string) (Confirmation, error) {
	switch s {
	case "ask", "":
		return AskEachTime, nil
	case "silently":
		return AlwaysSilently, nil
	case "never":
		return Never, nil
	default:
		return AskEachTime, fmt.Errorf("%w: %q", ErrInvalidConfirmation, s)
	}
}

// MarshalJSON implements json.Marshaler.
func (c Confirmation) MarshalJSON() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConfirmation, int(c))
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Confirmation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseConfirmation(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
