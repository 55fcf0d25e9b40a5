package webhook

import "fmt"

/* Status represents the current state of a delivery
 * Follows the lifecycle: Pending -> Delivered/Failed/Retrying, Retrying -> Delivered/Failed/Retrying
 */
type Status int

const (
	Pending Status = iota + 1
	Delivered
	Failed
	Retrying
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	case Retrying:
		return "retrying"
	default:
		return "unknown"
	}
}

/* NewStatus creates a Status from its string form
 * Unknown strings are an error: guessing a state would let the sweep resend the row
 */
func NewStatus(str string) (Status, error) {
	switch str {
	case "pending":
		return Pending, nil
	case "delivered":
		return Delivered, nil
	case "failed":
		return Failed, nil
	case "retrying":
		return Retrying, nil
	default:
		return 0, fmt.Errorf("unknown delivery status %q", str)
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Retrying {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Delivered || s == Failed
}

// Statuses lists every valid status
func Statuses() []Status {
	return []Status{Pending, Delivered, Failed, Retrying}
}
