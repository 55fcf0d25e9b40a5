package webhook

import "time"

/* Delivery is the audit row of one event occurrence sent to one subscription
 * Retries mutate the same row, it is never duplicated
 */
type Delivery struct {
	ID                 string
	TenantID           string
	SubscriptionID     string
	Event              Event
	Payload            []byte
	Status             Status
	AttemptCount       int
	LastAttemptAt      *time.Time
	NextRetryAt        *time.Time
	ResponseStatusCode *int
	ErrorMessage       string
	Signature          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsDue reports whether an automatic attempt may run at now
func (d Delivery) IsDue(now time.Time) bool {
	switch d.Status {
	case Pending:
		return true
	case Retrying:
		return d.NextRetryAt == nil || !d.NextRetryAt.After(now)
	default:
		return false
	}
}

// RetriesUsed is the number of attempts made after the first one
func (d Delivery) RetriesUsed() int {
	if d.AttemptCount <= 1 {
		return 0
	}
	return d.AttemptCount - 1
}
