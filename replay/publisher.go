package replay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pithecene-io/flightreplay/iox"
	"github.com/pithecene-io/flightreplay/types"
)

// PublishMode selects how a frame is staged before the rename.
type PublishMode string

const (
	// PublishSymlink stages a symlink to the capture (no data copied).
	PublishSymlink PublishMode = "symlink"
	// PublishCopy stages a full copy of the capture.
	PublishCopy PublishMode = "copy"
)

// Valid reports whether the mode is supported.
func (m PublishMode) Valid() bool {
	return m == PublishSymlink || m == PublishCopy
}

// DefaultStableName returns the stable publication name for a format.
func DefaultStableName(format types.ImageFormat) string {
	return "fake_chameleon" + format.Extension()
}

// Publisher exposes the current frame under one stable path.
// Each publication stages a temporary entry next to the stable path and
// renames it over the stable name, so readers see either the previous
// frame or the next one, never a partial file.
type Publisher struct {
	stablePath string
	tmpPath    string
	mode       PublishMode
}

// NewPublisher creates a publisher for stablePath.
func NewPublisher(stablePath string, mode PublishMode) (*Publisher, error) {
	if stablePath == "" {
		return nil, fmt.Errorf("stable path is required")
	}
	if mode == "" {
		mode = PublishSymlink
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid publish mode %q", mode)
	}
	// The staging name extends the stable name, so the two never collide
	// and clearing a leftover staging entry cannot touch the live frame.
	return &Publisher{
		stablePath: stablePath,
		tmpPath:    stablePath + ".tmp",
		mode:       mode,
	}, nil
}

// Advance publishes the front frame of index if it is due at clock.
// At most one frame is published per call. A due frame is consumed even
// when publication fails, so playback keeps moving.
func (p *Publisher) Advance(index *ImageIndex, clock float64) (*types.ImageFrame, error) {
	front, ok := index.Front()
	if !ok || front.CaptureTime > clock {
		return nil, nil
	}
	index.Pop()
	if err := p.Publish(front); err != nil {
		return &front, err
	}
	return &front, nil
}

// Publish makes frame visible under the stable path.
func (p *Publisher) Publish(frame types.ImageFrame) error {
	// A leftover staging entry from a failed publication would block the
	// symlink; the next attempt clears it again.
	_ = iox.RemoveStale(p.tmpPath)

	switch p.mode {
	case PublishCopy:
		if err := copyFile(frame.Path, p.tmpPath); err != nil {
			return fmt.Errorf("stage %s: %w", frame.Path, err)
		}
	default:
		target, err := filepath.Abs(frame.Path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", frame.Path, err)
		}
		if err := os.Symlink(target, p.tmpPath); err != nil {
			return fmt.Errorf("stage %s: %w", frame.Path, err)
		}
	}

	if err := os.Rename(p.tmpPath, p.stablePath); err != nil {
		return fmt.Errorf("publish %s: %w", frame.Path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(in)

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		iox.DiscardClose(out)
		return err
	}
	if err := out.Sync(); err != nil {
		iox.DiscardClose(out)
		return err
	}
	return out.Close()
}
