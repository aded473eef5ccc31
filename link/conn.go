package link

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/pithecene-io/flightreplay/types"
	"github.com/pithecene-io/flightreplay/wire"
)

// Conn is a message link over a packet or stream transport.
// WriteMessage and ReadMessage may be called from different goroutines.
type Conn struct {
	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool

	rwc    io.ReadWriteCloser
	packet bool
	frames *wire.Reader

	// Listening links reply to whoever spoke last.
	listener net.PacketConn
	peerMu   sync.Mutex
	peer     net.Addr
}

func newStreamConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc, frames: wire.NewReader(rwc)}
}

func newPacketConn(c net.Conn) *Conn {
	return &Conn{rwc: c, packet: true}
}

func newListenConn(pc net.PacketConn) *Conn {
	return &Conn{listener: pc, packet: true}
}

// WriteMessage writes m as one frame.
func (c *Conn) WriteMessage(m *types.Message) error {
	if c.isClosed() {
		return ErrClosed
	}
	payload, err := wire.EncodeMessage(m)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.listener == nil {
		return wire.WriteFrame(c.rwc, payload)
	}
	c.peerMu.Lock()
	peer := c.peer
	c.peerMu.Unlock()
	if peer == nil {
		return ErrNoPeer
	}
	_, err = c.listener.WriteTo(wire.AppendFrame(nil, payload), peer)
	return err
}

// ReadMessage blocks for the next inbound message.
// Undecodable datagrams and refused-port notifications are skipped; the
// returned error is terminal.
func (c *Conn) ReadMessage() (*types.Message, error) {
	if !c.packet {
		for {
			msg, err := c.frames.Next()
			if err != nil {
				var fe *wire.FrameError
				if errors.As(err, &fe) && !fe.IsFatal() {
					continue
				}
				return nil, c.readErr(err)
			}
			return msg, nil
		}
	}

	buf := make([]byte, wire.MaxFrameSize)
	for {
		n, err := c.readPacket(buf)
		if err != nil {
			if errors.Is(err, syscall.ECONNREFUSED) && !c.isClosed() {
				continue
			}
			return nil, c.readErr(err)
		}
		payload, _, err := wire.ParseFrame(buf[:n])
		if err != nil {
			continue
		}
		msg, err := wire.DecodeMessage(payload)
		if err != nil {
			continue
		}
		return msg, nil
	}
}

func (c *Conn) readPacket(buf []byte) (int, error) {
	if c.listener == nil {
		return c.rwc.Read(buf)
	}
	n, addr, err := c.listener.ReadFrom(buf)
	if err == nil {
		c.peerMu.Lock()
		c.peer = addr
		c.peerMu.Unlock()
	}
	return n, err
}

func (c *Conn) readErr(err error) error {
	if c.isClosed() || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
		return ErrClosed
	}
	return err
}

// Close closes the transport. Blocked reads return ErrClosed.
func (c *Conn) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return nil
	}
	c.closed = true
	c.closeMu.Unlock()

	if c.listener != nil {
		return c.listener.Close()
	}
	return c.rwc.Close()
}

func (c *Conn) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}
