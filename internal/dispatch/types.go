package dispatch

import (
	"context"
	"errors"
	"fmt"

	"whatsapp-bulk-sender/pkg/models"
)

var (
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrEmptyJob       = errors.New("dispatch job has no contacts")
	ErrUnknownPolicy  = errors.New("unknown failure policy")
	ErrUnknownPacing  = errors.New("unknown pacing strategy")
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// FailurePolicy decides what a failed delivery does to the rest of the job.
type FailurePolicy string

const (
	// FailureIsolate records the failure and moves on to the next recipient.
	FailureIsolate FailurePolicy = "isolate"
	// FailureAbort stops the job at the first failed delivery.
	FailureAbort FailurePolicy = "abort"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", FailureIsolate:
		return FailureIsolate, nil
	case FailureAbort:
		return FailureAbort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Deliverer performs the single network call that hands one message to the
// delivery endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, req models.DeliveryRequest) error
}

// ProgressFunc receives the cumulative sent count and the percentage of the
// job processed so far.
type ProgressFunc func(sent int, percent float64)

// Job is a snapshot of selected contacts and template text taken when the
// dispatch starts. Contacts are sent in slice order.
type Job struct {
	ID            string
	Contacts      []models.Contact
	Template      string
	AttachmentRef string
	OnProgress    ProgressFunc
}

type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

type Result struct {
	Contact models.Contact `json:"contact"`
	Message string         `json:"message"`
	Outcome Outcome        `json:"outcome"`
	Reason  string         `json:"reason,omitempty"`
}

type Summary struct {
	JobID    string   `json:"job_id"`
	State    State    `json:"state"`
	Total    int      `json:"total"`
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	FailedAt int      `json:"failed_at"`
	Results  []Result `json:"results"`
}
