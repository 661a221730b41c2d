// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package datagram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// MaxDatagramSize is the receive buffer size: the largest UDP payload.
const MaxDatagramSize = 65536

// Config describes the socket to bind.
type Config struct {
	// Host is the address to bind, e.g. "0.0.0.0" or "127.0.0.1".
	Host string

	// Port is the UDP port. Zero binds an ephemeral port.
	Port int

	// SocketBuffer sets SO_RCVBUF when positive. Bursty SDKs can
	// overrun the kernel default between receive calls.
	SocketBuffer int
}

// Address returns the host:port string for the configuration.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Packet is one received datagram. Data aliases the listener's receive
// buffer and is only valid until the next Receive call.
type Packet struct {
	Data   []byte
	Sender netip.AddrPort
}

// Listener receives datagrams from a bound UDP socket. A Listener is
// owned by a single goroutine; Receive must not be called concurrently.
type Listener struct {
	conn   *net.UDPConn
	buffer []byte
}

// Listen binds a UDP socket. The socket is created with SO_REUSEADDR so
// a restarted monitor can rebind immediately.
func Listen(ctx context.Context, config Config) (*Listener, error) {
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid UDP port %d", config.Port)
	}

	listenConfig := net.ListenConfig{
		Control: func(network, address string, raw syscall.RawConn) error {
			return controlSocket(raw, config.SocketBuffer)
		},
	}

	packetConn, err := listenConfig.ListenPacket(ctx, "udp", config.Address())
	if err != nil {
		return nil, fmt.Errorf("binding UDP %s: %w", config.Address(), err)
	}

	return &Listener{
		conn:   packetConn.(*net.UDPConn),
		buffer: make([]byte, MaxDatagramSize),
	}, nil
}

// controlSocket applies socket options before bind.
func controlSocket(raw syscall.RawConn, socketBuffer int) error {
	var optionErr error
	err := raw.Control(func(fd uintptr) {
		optionErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if optionErr != nil {
			optionErr = fmt.Errorf("setting SO_REUSEADDR: %w", optionErr)
			return
		}
		if socketBuffer > 0 {
			optionErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketBuffer)
			if optionErr != nil {
				optionErr = fmt.Errorf("setting SO_RCVBUF=%d: %w", socketBuffer, optionErr)
			}
		}
	})
	if err != nil {
		return err
	}
	return optionErr
}

// Receive waits up to timeout for one datagram. On timeout it returns
// an error for which [IsTimeout] is true.
func (l *Listener) Receive(timeout time.Duration) (Packet, error) {
	if err := l.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil { //nolint:realclock kernel deadline
		return Packet{}, fmt.Errorf("setting read deadline: %w", err)
	}
	n, sender, err := l.conn.ReadFromUDPAddrPort(l.buffer)
	if err != nil {
		return Packet{}, err
	}
	return Packet{Data: l.buffer[:n], Sender: sender}, nil
}

// LocalAddr returns the bound address, which carries the actual port
// when Config.Port was zero.
func (l *Listener) LocalAddr() netip.AddrPort {
	return l.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close releases the socket. A Receive blocked in another goroutine
// returns with an error for which [IsClosed] is true.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// IsTimeout reports whether err is a receive timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsClosed reports whether err comes from using a closed listener.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
