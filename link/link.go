// Package link opens the output channel replayed messages are written to.
//
// Endpoints:
//
//	udp:HOST:PORT, udpout:HOST:PORT, HOST:PORT   send datagrams to HOST:PORT
//	udpin:HOST:PORT                              listen, reply to the last sender
//	tcp:HOST:PORT                                connect a stream
//	/dev/ttyUSB0                                 serial device at the given baud rate
//
// Packet links carry exactly one frame per datagram; stream links carry a
// plain concatenation of frames.
package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrClosed is returned by operations on a closed link.
var ErrClosed = errors.New("link closed")

// ErrNoPeer is returned when a listening link has not heard from anyone yet.
var ErrNoPeer = errors.New("no peer to send to")

// DefaultBaudRate is used for serial endpoints when none is configured.
const DefaultBaudRate = 57600

// dialTimeout bounds connecting a stream endpoint.
const dialTimeout = 10 * time.Second

// Kind classifies endpoints.
type Kind string

// Endpoint kinds.
const (
	KindUDPOut Kind = "udpout"
	KindUDPIn  Kind = "udpin"
	KindTCP    Kind = "tcp"
	KindSerial Kind = "serial"
)

// Endpoint is a parsed output address.
type Endpoint struct {
	Kind    Kind
	Address string
	Baud    int
}

// String renders the endpoint in the form ParseEndpoint accepts.
func (e Endpoint) String() string {
	if e.Kind == KindSerial {
		return e.Address
	}
	return string(e.Kind) + ":" + e.Address
}

// ParseEndpoint parses an endpoint string. baud applies to serial devices.
func ParseEndpoint(s string, baud int) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, errors.New("empty endpoint")
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	if strings.HasPrefix(s, "/") || strings.HasPrefix(strings.ToUpper(s), "COM") {
		return Endpoint{Kind: KindSerial, Address: s, Baud: baud}, nil
	}

	kind := KindUDPOut
	addr := s
	if scheme, rest, ok := strings.Cut(s, ":"); ok {
		switch strings.ToLower(scheme) {
		case "udp", "udpout":
			kind, addr = KindUDPOut, rest
		case "udpin":
			kind, addr = KindUDPIn, rest
		case "tcp":
			kind, addr = KindTCP, rest
		}
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	return Endpoint{Kind: kind, Address: addr, Baud: baud}, nil
}

// Dial opens the endpoint.
func Dial(ctx context.Context, ep Endpoint) (*Conn, error) {
	switch ep.Kind {
	case KindUDPOut:
		var d net.Dialer
		c, err := d.DialContext(ctx, "udp", ep.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", ep, err)
		}
		return newPacketConn(c), nil
	case KindUDPIn:
		var lc net.ListenConfig
		pc, err := lc.ListenPacket(ctx, "udp", ep.Address)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", ep, err)
		}
		return newListenConn(pc), nil
	case KindTCP:
		d := net.Dialer{Timeout: dialTimeout}
		c, err := d.DialContext(ctx, "tcp", ep.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", ep, err)
		}
		return newStreamConn(c), nil
	case KindSerial:
		port, err := openSerial(ep.Address, ep.Baud)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ep, err)
		}
		return newStreamConn(port), nil
	default:
		return nil, fmt.Errorf("unsupported endpoint kind %q", ep.Kind)
	}
}
