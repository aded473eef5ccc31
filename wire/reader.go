package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/pithecene-io/flightreplay/types"
)

// Reader yields frames and decoded messages from a framed stream and keeps
// the byte offset of the frame being read, so errors point into the file.
type Reader struct {
	r      io.Reader
	offset int64
	prefix [LengthPrefixSize]byte
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the position of the next frame.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ReadPayload reads one frame and returns its payload.
// A stream that ends on a frame boundary returns io.EOF. Any other short
// read or an oversized prefix is a fatal *FrameError.
func (r *Reader) ReadPayload() ([]byte, error) {
	start := r.offset
	n, err := io.ReadFull(r.r, r.prefix[:])
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Offset: start, Err: err}
	}

	size := binary.BigEndian.Uint32(r.prefix[:])
	if size > MaxPayloadSize {
		return nil, &FrameError{Kind: FrameErrorTooLarge, Offset: start, Err: errOversized}
	}
	payload := make([]byte, size)
	n, err = io.ReadFull(r.r, payload)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Offset: start, Err: err}
	}
	return payload, nil
}

// Next reads and decodes the next message. A decode error leaves the reader
// on the following frame; fatal errors and io.EOF end the stream.
func (r *Reader) Next() (*types.Message, error) {
	start := r.offset
	payload, err := r.ReadPayload()
	if err != nil {
		return nil, err
	}
	msg, err := DecodeMessage(payload)
	if err != nil {
		var fe *FrameError
		if errors.As(err, &fe) {
			fe.Offset = start
		}
		return nil, err
	}
	return msg, nil
}
