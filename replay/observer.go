package replay

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/types"
)

// Status is the playback state after one streaming iteration.
type Status struct {
	Pass int
	File string
	// Message is the message emitted this iteration (the recorded one, even in HIL mode).
	Message *types.Message
	// Clock is the playback clock in recorded seconds.
	Clock float64
	// Emitted counts messages written for the current file.
	Emitted int64
	// Published is the frame published this iteration, if any.
	Published *types.ImageFrame
	// ImagesRemaining is the number of frames left in the pass.
	ImagesRemaining int
	// ParamsPending is the number of parameters awaiting replay.
	ParamsPending int
	// FastSkip reports whether the wait before this message was compressed.
	FastSkip bool
	// Wait is the wait applied before this message.
	Wait time.Duration
}

// Observer is called once per streaming iteration on the streaming task.
// Implementations must not block.
type Observer interface {
	Tick(Status)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Status)

// Tick implements Observer.
func (f ObserverFunc) Tick(s Status) { f(s) }

// Observers fans a tick out to several observers in order.
type Observers []Observer

// Tick implements Observer.
func (o Observers) Tick(s Status) {
	for _, obs := range o {
		obs.Tick(s)
	}
}

// progressInterval is the minimum wall time between progress lines.
const progressInterval = 2 * time.Second

// LogObserver logs playback position at most every two seconds and every
// published frame at debug level.
type LogObserver struct {
	logger   *log.Logger
	progress rate.Sometimes
}

// NewLogObserver creates a log observer.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{
		logger:   logger,
		progress: rate.Sometimes{Interval: progressInterval},
	}
}

// Tick implements Observer.
func (o *LogObserver) Tick(s Status) {
	if s.Published != nil {
		o.logger.Debug("image published", map[string]any{
			"path":         s.Published.Path,
			"capture_time": s.Published.CaptureTime,
		})
	}
	o.progress.Do(func() {
		o.logger.Info("playback position", map[string]any{
			"pass":             s.Pass,
			"file":             s.File,
			"recorded_time":    RecordedTime(s.Clock).Format(time.ANSIC),
			"emitted":          s.Emitted,
			"images_remaining": s.ImagesRemaining,
		})
	})
}

// RecordedTime converts a recorded timestamp to a time.Time.
func RecordedTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
