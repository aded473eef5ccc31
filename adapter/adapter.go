// Package adapter defines the notification boundary for finished sessions.
//
// Adapters publish a session_completed event to a downstream system once
// the replay driver returns. The play command owns adapter lifecycle.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/flightreplay/types"
)

// EventTypeSessionCompleted is the only event type adapters publish.
const EventTypeSessionCompleted = "session_completed"

// Session outcomes carried in SessionCompletedEvent.Outcome.
const (
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeNoImages  = "no_images"
	OutcomeError     = "error"
)

// SessionCompletedEvent is the payload published when a session ends.
type SessionCompletedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"`
	SessionID       string `json:"session_id"`
	Source          string `json:"source"`
	Day             string `json:"day"`
	Outcome         string `json:"outcome"`
	ReportPath      string `json:"report_path,omitempty"`
	Timestamp       string `json:"timestamp"` // RFC 3339
	Passes          int    `json:"passes"`
	Files           int    `json:"files"`
	MessagesEmitted int64  `json:"messages_emitted"`
	ImagesPublished int64  `json:"images_published"`
	DurationMs      int64  `json:"duration_ms"`
}

// NewSessionCompletedEvent builds the event for a finished session.
// result may be nil when the driver failed before playing anything.
func NewSessionCompletedEvent(result *types.SessionResult, outcome, source, day, reportPath string, now time.Time) *SessionCompletedEvent {
	ev := &SessionCompletedEvent{
		ContractVersion: types.Version,
		EventType:       EventTypeSessionCompleted,
		Source:          source,
		Day:             day,
		Outcome:         outcome,
		ReportPath:      reportPath,
		Timestamp:       now.UTC().Format(time.RFC3339),
	}
	if result != nil {
		ev.SessionID = result.SessionID
		ev.Passes = result.Passes
		ev.Files = len(result.Files)
		ev.MessagesEmitted = result.TotalEmitted()
		ev.ImagesPublished = result.TotalImages()
		ev.DurationMs = result.Duration.Milliseconds()
	}
	return ev
}

// Adapter publishes session completion events to a downstream system.
type Adapter interface {
	// Publish sends the event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *SessionCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// BaseBackoff is the delay before the first retry. It doubles per attempt.
var BaseBackoff = 500 * time.Millisecond

// ErrPermanent marks a failure that retrying cannot fix.
var ErrPermanent = errors.New("non-retriable")

// Retry calls fn up to 1+retries times with exponential backoff between
// attempts. An error wrapping ErrPermanent stops immediately.
// name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, fn func(context.Context) error) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * BaseBackoff
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) {
			return fmt.Errorf("%s: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
