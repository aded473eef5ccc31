package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/types"
	"github.com/pithecene-io/flightreplay/wire"
)

// ErrEndOfLog signals that the recording is exhausted.
// It is not a failure; the driver closes the file and moves on.
var ErrEndOfLog = errors.New("end of log")

// CursorStats counts what a cursor has read.
type CursorStats struct {
	// Yielded is the number of messages returned by Next.
	Yielded int64
	// Filtered is the number of messages rejected by the filter.
	Filtered int64
	// Dropped is the number of diagnostic DATA* messages discarded.
	Dropped int64
	// DecodeErrors is the number of unreadable records skipped.
	DecodeErrors int64
}

// Cursor reads one recording sequentially.
// Not safe for concurrent use; owned by the streaming task.
type Cursor struct {
	path      string
	closer    io.Closer
	reader    *wire.Reader
	filter    Filter
	latest    map[string]*types.Message
	stats     CursorStats
	truncated error
	logger    *log.Logger
	collector *metrics.Collector
}

// OpenCursor opens the recording at path.
// filter may be nil. logger and collector may be nil.
func OpenCursor(path string, filter Filter, logger *log.Logger, collector *metrics.Collector) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return newCursor(path, bufio.NewReaderSize(f, 64*1024), f, filter, logger, collector), nil
}

func newCursor(path string, r io.Reader, closer io.Closer, filter Filter, logger *log.Logger, collector *metrics.Collector) *Cursor {
	if logger == nil {
		logger = log.Nop()
	}
	return &Cursor{
		path:      path,
		closer:    closer,
		reader:    wire.NewReader(r),
		filter:    filter,
		latest:    make(map[string]*types.Message),
		logger:    logger,
		collector: collector,
	}
}

// Path returns the recording path.
func (c *Cursor) Path() string {
	return c.path
}

// Next returns the next qualifying message, or ErrEndOfLog.
//
// Diagnostic DATA* messages are dropped before anything else sees them.
// All other decoded messages update the latest-by-type table before the
// filter runs, so conditions and HIL synthesis see rejected messages too.
// A malformed frame ends the recording; a record that frames correctly but
// cannot be decoded is skipped.
func (c *Cursor) Next() (*types.Message, error) {
	if c.truncated != nil {
		return nil, ErrEndOfLog
	}
	for {
		msg, err := c.reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrEndOfLog
			}
			if wire.IsFatalFrameError(err) {
				c.truncated = err
				c.logger.Warn("recording truncated", map[string]any{
					"path":  c.path,
					"error": err.Error(),
				})
				return nil, ErrEndOfLog
			}
			c.stats.DecodeErrors++
			c.collector.IncDecodeError()
			c.logger.Debug("skipping undecodable record", map[string]any{
				"path":  c.path,
				"error": err.Error(),
			})
			continue
		}

		if msg.IsDiagnostic() {
			c.stats.Dropped++
			c.collector.IncMessageDropped()
			continue
		}

		c.latest[msg.Type] = msg
		if c.filter != nil {
			c.filter.Observe(msg)
			if !c.filter.Match(msg) {
				c.stats.Filtered++
				c.collector.IncMessageFiltered()
				continue
			}
		}

		c.stats.Yielded++
		return msg, nil
	}
}

// Latest returns the most recent non-diagnostic message of the given type,
// whether or not it passed the filter.
func (c *Cursor) Latest(msgType string) (*types.Message, bool) {
	m, ok := c.latest[msgType]
	return m, ok
}

// Truncated returns the error that ended the recording early, if any.
func (c *Cursor) Truncated() error {
	return c.truncated
}

// Stats returns read counters.
func (c *Cursor) Stats() CursorStats {
	return c.stats
}

// Close closes the underlying file.
func (c *Cursor) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}
