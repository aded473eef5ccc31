package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pithecene-io/flightreplay/types"
)

func init() {
	BaseBackoff = time.Millisecond
}

func TestNewSessionCompletedEvent(t *testing.T) {
	result := &types.SessionResult{
		SessionID: "01J0000000000000000000000",
		Passes:    2,
		Files: []types.FileResult{
			{MessagesEmitted: 10, ImagesPublished: 2},
			{MessagesEmitted: 5, ImagesPublished: 1},
		},
		Duration: 1500 * time.Millisecond,
	}
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	ev := NewSessionCompletedEvent(result, OutcomeCompleted, "mission-7", "2026-10-14", "/var/reports", now)

	if ev.EventType != EventTypeSessionCompleted {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.ContractVersion != types.Version {
		t.Errorf("ContractVersion = %q, want %q", ev.ContractVersion, types.Version)
	}
	if ev.Files != 2 || ev.Passes != 2 {
		t.Errorf("Files/Passes = %d/%d, want 2/2", ev.Files, ev.Passes)
	}
	if ev.MessagesEmitted != 15 || ev.ImagesPublished != 3 {
		t.Errorf("totals = %d/%d, want 15/3", ev.MessagesEmitted, ev.ImagesPublished)
	}
	if ev.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", ev.DurationMs)
	}
	if ev.Timestamp != "2026-10-14T12:00:00Z" {
		t.Errorf("Timestamp = %q", ev.Timestamp)
	}
}

func TestNewSessionCompletedEvent_NilResult(t *testing.T) {
	ev := NewSessionCompletedEvent(nil, OutcomeNoImages, "s", "d", "", time.Now())
	if ev.Outcome != OutcomeNoImages {
		t.Errorf("Outcome = %q", ev.Outcome)
	}
	if ev.Files != 0 || ev.SessionID != "" {
		t.Errorf("expected empty totals, got %+v", ev)
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		permanent bool
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", 3, 0, false, false, 1},
		{"succeeds after retries", 3, 2, false, false, 3},
		{"exhausts retries", 2, 10, false, true, 3},
		{"no retries", 0, 1, false, true, 1},
		{"permanent stops", 3, 10, true, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(t.Context(), "test", tt.retries, func(context.Context) error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return ErrPermanent
					}
					return errors.New("transient")
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	calls := 0
	err := Retry(ctx, "test", 3, func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
