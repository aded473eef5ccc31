// Package replay re-emits recorded telemetry and imagery as a paced live stream.
//
// A Driver plays a list of recordings against one image directory. For every
// message it waits out the recorded gap (compressed when no image is due
// soon), writes the message to the output link, caches parameter reports,
// publishes whichever image has become due, and replays one cached
// parameter per iteration after the downstream side asks for the list.
package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/types"
)

// ErrNoImages is returned when a pass starts with an empty image directory.
var ErrNoImages = errors.New("no images found")

// Link is a bidirectional message channel to the downstream consumer.
type Link interface {
	// WriteMessage emits one framed message.
	WriteMessage(m *types.Message) error
	// ReadMessage blocks for the next inbound message.
	// Returns an error once the link is closed.
	ReadMessage() (*types.Message, error)
	Close() error
}

// Dialer opens the output link. Called once per recording.
type Dialer func(ctx context.Context) (Link, error)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config configures a Driver.
type Config struct {
	// Files are the recordings, played in order.
	Files []string
	// ImageDir is scanned at the start of every pass.
	ImageDir string
	// ImageFormat selects which captures are scanned and the default stable name.
	ImageFormat types.ImageFormat
	// StablePath is where the current image is published.
	// Defaults to DefaultStableName(ImageFormat) in the working directory.
	StablePath string
	// PublishMode defaults to PublishSymlink.
	PublishMode PublishMode
	// Filter builds the per-recording message filter.
	Filter FilterSpec
	// Speedup multiplies playback rate; 1 is real time.
	Speedup float64
	// Pacing overrides the pacing constants. Zero value means DefaultPacing.
	Pacing Pacing
	// Loop restarts from the first recording after the last one.
	Loop bool
	// HIL emits synthesized HIL_STATE frames instead of recorded messages.
	HIL bool
	// Dial opens the output link.
	Dial Dialer
	// Observer is ticked once per streaming iteration. May be nil.
	Observer Observer
	// OnFileDone is called after each recording is closed. May be nil.
	OnFileDone func(types.FileResult)
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Collector records metrics. May be nil (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Sleep overrides the interruptible wait (for testing).
	Sleep SleepFunc
	// Now overrides the wall clock (for testing).
	Now func() time.Time
}

// Driver orchestrates playback across recordings and passes.
type Driver struct {
	config    Config
	pacer     *Pacer
	publisher *Publisher
	params    *ParameterCache
	synth     *Synthesizer
	logger    *log.Logger
}

// NewDriver validates config and creates a driver.
func NewDriver(config Config) (*Driver, error) {
	if len(config.Files) == 0 {
		return nil, errors.New("at least one recording is required")
	}
	if config.Dial == nil {
		return nil, errors.New("output dialer is required")
	}
	if config.ImageFormat == "" {
		config.ImageFormat = types.ImageFormatPGM
	}
	if !config.ImageFormat.Valid() {
		return nil, fmt.Errorf("invalid image format %q", config.ImageFormat)
	}
	if config.StablePath == "" {
		config.StablePath = DefaultStableName(config.ImageFormat)
	}
	if config.Pacing == (Pacing{}) {
		config.Pacing = DefaultPacing()
	}
	if config.Speedup == 0 {
		config.Speedup = 1
	}
	if config.Sleep == nil {
		config.Sleep = Sleep
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = log.Nop()
	}
	if config.Observer == nil {
		config.Observer = ObserverFunc(func(Status) {})
	}

	// Compile once up front so a bad condition fails before anything plays.
	if _, err := config.Filter.Build(); err != nil {
		return nil, err
	}

	pacer, err := NewPacer(config.Pacing, config.Speedup)
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher(config.StablePath, config.PublishMode)
	if err != nil {
		return nil, err
	}

	return &Driver{
		config:    config,
		pacer:     pacer,
		publisher: publisher,
		params:    NewParameterCache(),
		synth:     NewSynthesizer(config.Now),
		logger:    config.Logger,
	}, nil
}

// Params returns the session-wide parameter cache.
func (d *Driver) Params() *ParameterCache {
	return d.params
}

// Run plays every recording once, or forever in loop mode, until ctx is done.
//
// Returns ErrNoImages if a pass starts with no images. On cancellation the
// partial result is returned with Canceled set, together with ctx.Err().
func (d *Driver) Run(ctx context.Context) (*types.SessionResult, error) {
	start := d.config.Now()
	result := &types.SessionResult{}
	defer func() {
		result.Duration = d.config.Now().Sub(start)
	}()

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			result.Canceled = true
			return result, err
		}

		logger := d.logger.WithPass(pass)
		index := ScanImages(d.config.ImageDir, d.config.ImageFormat, logger)
		if index.Len() == 0 {
			logger.Error("no images found", map[string]any{
				"dir":    d.config.ImageDir,
				"format": string(d.config.ImageFormat),
			})
			return result, fmt.Errorf("%w in %s", ErrNoImages, d.config.ImageDir)
		}
		result.Passes = pass
		d.config.Collector.IncPassStarted()
		logger.Info("starting pass", map[string]any{
			"images":       index.Len(),
			"image_span_s": index.Span().Seconds(),
			"files":        len(d.config.Files),
		})

		var emitted int64
		for _, path := range d.config.Files {
			fr, err := d.playFile(ctx, pass, path, index, logger.WithFile(path))
			if fr != nil {
				emitted += fr.MessagesEmitted
				result.Files = append(result.Files, *fr)
				if d.config.OnFileDone != nil {
					d.config.OnFileDone(*fr)
				}
			}
			if err != nil {
				if ctx.Err() != nil {
					result.Canceled = true
					return result, ctx.Err()
				}
				return result, err
			}
		}

		if !d.config.Loop {
			return result, nil
		}
		// A pass that emitted nothing would otherwise rescan and replay in a
		// tight loop.
		if emitted == 0 {
			logger.Warn("pass emitted no messages, backing off", map[string]any{
				"wait": d.config.Pacing.MaxWait.String(),
			})
			if err := d.config.Sleep(ctx, d.config.Pacing.MaxWait); err != nil {
				result.Canceled = true
				return result, err
			}
		}
	}
}

// playFile streams one recording. The image index carries over between
// recordings of the same pass.
func (d *Driver) playFile(ctx context.Context, pass int, path string, index *ImageIndex, logger *log.Logger) (*types.FileResult, error) {
	started := d.config.Now()
	fr := &types.FileResult{Pass: pass, File: path, Outcome: types.FileOutcomeCompleted}
	defer func() {
		fr.WallDuration = d.config.Now().Sub(started)
	}()

	filter, err := d.config.Filter.Build()
	if err != nil {
		return nil, err
	}
	cursor, err := OpenCursor(path, filter, logger, d.config.Collector)
	if err != nil {
		return nil, err
	}
	defer func() {
		stats := cursor.Stats()
		fr.MessagesFiltered = stats.Filtered
		fr.MessagesDropped = stats.Dropped
		fr.DecodeErrors = stats.DecodeErrors
		if err := cursor.Close(); err != nil {
			logger.Warn("closing recording failed", map[string]any{"error": err.Error()})
		}
	}()

	link, err := d.config.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("open output link: %w", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.pollRequests(link, logger)
	}()
	defer func() {
		if err := link.Close(); err != nil {
			logger.Debug("closing output link failed", map[string]any{"error": err.Error()})
		}
		wg.Wait()
	}()

	first, err := cursor.Next()
	if err != nil {
		fr.Outcome = types.FileOutcomeEmpty
		if cursor.Truncated() != nil {
			fr.Outcome = types.FileOutcomeTruncated
			d.config.Collector.IncFileTruncated()
		}
		logger.Warn("recording has no playable messages", nil)
		return fr, nil
	}
	clock := first.Timestamp
	fr.FirstTimestamp = clock
	fr.LastTimestamp = clock
	if skipped := index.SkipBefore(clock); skipped > 0 {
		fr.ImagesSkipped = int64(skipped)
		d.config.Collector.AddImagesSkipped(skipped)
		logger.Info("skipped images before recording start", map[string]any{"skipped": skipped})
	}
	logger.Info("playing recording", map[string]any{
		"start":  RecordedTime(clock).UTC().Format(time.RFC3339Nano),
		"images": index.Len(),
	})

	// The first message sets the clock and is then streamed like any other,
	// with a zero wait.
	msg := first
	for {
		if msg == nil {
			if msg, err = cursor.Next(); err != nil {
				// ErrEndOfLog; truncation is reported through cursor.Truncated.
				break
			}
		}

		next, hasImage := index.Front()
		wait := d.pacer.Wait(clock, msg.Timestamp, next.CaptureTime, hasImage)
		fastSkip := d.pacer.FastSkip(msg.Timestamp, next.CaptureTime, hasImage)
		if err := d.config.Sleep(ctx, wait); err != nil {
			fr.Outcome = types.FileOutcomeCanceled
			logger.Info("playback interrupted", nil)
			return fr, err
		}
		if msg.Timestamp > clock {
			clock = msg.Timestamp
		}
		fr.LastTimestamp = clock

		if d.emit(link, cursor, msg, logger) {
			fr.MessagesEmitted++
		}
		d.params.Observe(msg)

		published, err := d.publisher.Advance(index, clock)
		if err != nil {
			d.config.Collector.IncPublishFailure()
			logger.Warn("image publication failed", map[string]any{"error": err.Error()})
		} else if published != nil {
			fr.ImagesPublished++
			d.config.Collector.IncImagePublished()
		}

		if pv, ok := d.params.DrainOne(); ok {
			if d.write(link, pv.Message, logger) {
				fr.ParamsReplayed++
				d.config.Collector.IncParamReplayed()
			}
		}

		d.config.Observer.Tick(Status{
			Pass:            pass,
			File:            path,
			Message:         msg,
			Clock:           clock,
			Emitted:         fr.MessagesEmitted,
			Published:       published,
			ImagesRemaining: index.Len(),
			ParamsPending:   d.params.Pending(),
			FastSkip:        fastSkip,
			Wait:            wait,
		})
		msg = nil
	}

	if cursor.Truncated() != nil {
		fr.Outcome = types.FileOutcomeTruncated
		d.config.Collector.IncFileTruncated()
	}
	d.config.Collector.IncFilePlayed()
	logger.Info("recording finished", map[string]any{
		"outcome":          string(fr.Outcome),
		"emitted":          fr.MessagesEmitted,
		"images_published": fr.ImagesPublished,
		"images_remaining": index.Len(),
	})
	return fr, nil
}

// emit writes msg, or the synthesized HIL frame in HIL mode.
func (d *Driver) emit(link Link, cursor *Cursor, msg *types.Message, logger *log.Logger) bool {
	if !d.config.HIL {
		return d.write(link, msg, logger)
	}
	hil, ok := d.synth.Synthesize(cursor.Latest)
	if !ok {
		d.config.Collector.IncHILIncomplete()
		return false
	}
	d.config.Collector.IncHILSynthesized()
	return d.write(link, hil, logger)
}

// write sends m. Link failures are counted and tolerated; consumers come and go.
func (d *Driver) write(link Link, m *types.Message, logger *log.Logger) bool {
	if err := link.WriteMessage(m); err != nil {
		d.config.Collector.IncLinkWriteFailure()
		logger.Debug("link write failed", map[string]any{
			"type":  m.Type,
			"error": err.Error(),
		})
		return false
	}
	d.config.Collector.IncMessageEmitted()
	return true
}

// pollRequests watches the link for parameter list requests until it closes.
func (d *Driver) pollRequests(link Link, logger *log.Logger) {
	for {
		m, err := link.ReadMessage()
		if err != nil {
			return
		}
		if m.Type != types.MsgParamRequestList {
			continue
		}
		n := d.params.RequestList()
		d.config.Collector.IncParamRequest()
		logger.Info("parameter list requested", map[string]any{"queued": n})
	}
}
