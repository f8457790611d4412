package bt

import "fmt"

// Status is the result of ticking a node.
type Status int

const (
	// StatusIdle means the node has never been ticked or was reset.
	StatusIdle Status = iota
	// StatusRunning means the node needs to be ticked again.
	StatusRunning
	StatusFailure
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusFailure:
		return "Failure"
	case StatusSuccess:
		return "Success"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether s ends a run of the node.
func (s Status) Terminal() bool {
	return s == StatusFailure || s == StatusSuccess
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Idle":
		*s = StatusIdle
	case "Running":
		*s = StatusRunning
	case "Failure":
		*s = StatusFailure
	case "Success":
		*s = StatusSuccess
	default:
		return fmt.Errorf("bt: unknown status %q", b)
	}
	return nil
}
