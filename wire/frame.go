// Package wire implements the record framing shared by recordings and links.
//
// A frame is a 4-byte big-endian payload length followed by a msgpack map
// {type, ts, fields}. Recordings are a plain concatenation of frames; stream
// links carry the same bytes, packet links carry exactly one frame per datagram.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/flightreplay/types"
)

const (
	LengthPrefixSize = 4
	// MaxFrameSize bounds a whole frame, prefix included. It also sizes the
	// datagram buffer of packet links.
	MaxFrameSize   = 1 << 20
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
)

// FrameErrorKind classifies what went wrong with a frame.
type FrameErrorKind int

const (
	// FrameErrorPartial: the stream ended inside a frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge: the length prefix exceeds MaxPayloadSize.
	FrameErrorTooLarge
	// FrameErrorDecode: the payload is not a message record.
	FrameErrorDecode
)

var frameErrorKindNames = [...]string{
	FrameErrorPartial:  "partial",
	FrameErrorTooLarge: "too_large",
	FrameErrorDecode:   "decode",
}

func (k FrameErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(frameErrorKindNames) {
		return frameErrorKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FrameError reports a bad frame and where it started in the stream.
// Offset is -1 when the frame did not come from a Reader.
type FrameError struct {
	Kind   FrameErrorKind
	Offset int64
	Err    error
}

func (e *FrameError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("wire: %s frame: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("wire: %s frame at offset %d: %v", e.Kind, e.Offset, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether a stream can continue past the error.
// Partial and oversized frames leave the reader mid-frame; decode errors
// consume exactly one frame.
func (e *FrameError) IsFatal() bool {
	return e.Kind != FrameErrorDecode
}

// IsFatalFrameError reports whether err wraps a fatal *FrameError.
func IsFatalFrameError(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe) && fe.IsFatal()
}

func frameErr(kind FrameErrorKind, err error) *FrameError {
	return &FrameError{Kind: kind, Offset: -1, Err: err}
}

var errOversized = fmt.Errorf("payload exceeds %d bytes", MaxPayloadSize)

// ParseFrame splits one frame off the front of buf and returns its payload.
// Packet links use it on whole datagrams.
func ParseFrame(buf []byte) (payload, rest []byte, err error) {
	if len(buf) < LengthPrefixSize {
		return nil, buf, frameErr(FrameErrorPartial, io.ErrUnexpectedEOF)
	}
	size := binary.BigEndian.Uint32(buf)
	if size > MaxPayloadSize {
		return nil, buf, frameErr(FrameErrorTooLarge, errOversized)
	}
	end := LengthPrefixSize + int(size)
	if len(buf) < end {
		return nil, buf, frameErr(FrameErrorPartial, io.ErrUnexpectedEOF)
	}
	return buf[LengthPrefixSize:end], buf[end:], nil
}

// AppendFrame appends the length-prefixed payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	dst = append(dst, lengthBuf[:]...)
	return append(dst, payload...)
}

// WriteFrame writes one length-prefixed payload in a single Write call,
// so packet transports emit exactly one datagram per frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return frameErr(FrameErrorTooLarge, errOversized)
	}
	_, err := w.Write(AppendFrame(make([]byte, 0, LengthPrefixSize+len(payload)), payload))
	return err
}

// DecodeMessage decodes a payload into a Message.
// The returned message keeps a reference to payload as Raw.
func DecodeMessage(payload []byte) (*types.Message, error) {
	var msg types.Message
	if err := msgpack.Unmarshal(payload, &msg); err != nil {
		return nil, frameErr(FrameErrorDecode, err)
	}
	if msg.Type == "" {
		return nil, frameErr(FrameErrorDecode, errors.New("record has no type"))
	}
	msg.Raw = payload
	return &msg, nil
}

// EncodeMessage returns the payload for m.
// Recorded messages are re-emitted byte for byte; synthesized ones are marshaled.
func EncodeMessage(m *types.Message) ([]byte, error) {
	if m.Raw != nil {
		return m.Raw, nil
	}
	payload, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	return payload, nil
}

// WriteMessage encodes m and writes it as one frame.
func WriteMessage(w io.Writer, m *types.Message) error {
	payload, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}
