package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// EventHeader carries the event tag of an outbound delivery
	EventHeader = "X-Webhook-Event"
	// SignatureHeader carries the hex HMAC-SHA256 of the raw body
	SignatureHeader = "X-Webhook-Signature"
	// DeliveryHeader carries the delivery id so receivers can deduplicate
	DeliveryHeader = "X-Webhook-Delivery"

	userAgent = "clinic-webhooks/1.0"

	// DefaultSendTimeout bounds a single outbound request
	DefaultSendTimeout = 10 * time.Second
)

// Request is everything needed to put one attempt on the wire
type Request struct {
	DeliveryID string
	TargetURL  string
	Event      Event
	Signature  string
	Body       []byte
}

/* Sender performs the network send
 * It returns the response status code when a response was received, and an error only
 * when the request could not be completed (connection failure, timeout)
 */
type Sender interface {
	Send(ctx context.Context, req Request) (int, error)
}

// HTTPSender posts deliveries with a bounded timeout
type HTTPSender struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSender creates a sender; timeout <= 0 falls back to DefaultSendTimeout
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &HTTPSender{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are reported as-is, the body must reach the registered URL only
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Send posts the exact signed bytes to the target URL
func (s *HTTPSender) Send(ctx context.Context, req Request) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.TargetURL, bytes.NewReader(req.Body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set(EventHeader, req.Event.String())
	httpReq.Header.Set(SignatureHeader, req.Signature)
	httpReq.Header.Set(DeliveryHeader, req.DeliveryID)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	// drain a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}

// Outcome is the classification of one attempt
type Outcome int

const (
	OutcomeDelivered Outcome = iota + 1
	OutcomePermanent
	OutcomeTransient
)

// String returns the label used in logs and metrics
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomePermanent:
		return "permanent_failure"
	case OutcomeTransient:
		return "transient_failure"
	default:
		return "unknown"
	}
}

/* Classify maps the result of a send onto an outcome
 * 2xx delivered; 4xx except 429 permanent; everything else, transport errors included, transient
 */
func Classify(statusCode int, sendErr error) (Outcome, error) {
	if sendErr != nil {
		return OutcomeTransient, &DeliveryError{Kind: ErrTransientDelivery, Err: sendErr}
	}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeDelivered, nil
	case statusCode == http.StatusTooManyRequests:
		return OutcomeTransient, &DeliveryError{Kind: ErrTransientDelivery, StatusCode: statusCode}
	case statusCode >= 400 && statusCode < 500:
		return OutcomePermanent, &DeliveryError{Kind: ErrPermanentDelivery, StatusCode: statusCode}
	default:
		return OutcomeTransient, &DeliveryError{Kind: ErrTransientDelivery, StatusCode: statusCode}
	}
}

// IsTimeout reports whether a send error was a deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
