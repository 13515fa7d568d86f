// Package transport adapts a standard net.Conn to the mqtt.Network
// interface, translating the session's per-call deadlines into
// SetReadDeadline/SetWriteDeadline calls. Session.Init and the packet
// cycle never see a net.Conn directly, only this.
package transport

import (
	"errors"
	"io"
	"net"
	"time"
)

// Conn wraps a net.Conn, implementing mqtt.Network.
type Conn struct {
	conn net.Conn
}

// NewConn wraps an already-dialed net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read arms the connection's read deadline for timeout and performs a
// single Read call. A orderly close is reported the same way net.Conn
// reports it: n==0, err==nil or err==io.EOF depending on the platform, so
// this treats an io.EOF with n==0 the same as a clean (0, nil).
func (c *Conn) Read(buf []byte, timeout time.Duration) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(buf)
	if n == 0 && isEOF(err) {
		return 0, nil
	}
	return n, err
}

// Write arms the connection's write deadline for timeout and performs a
// single Write call.
func (c *Conn) Write(buf []byte, timeout time.Duration) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return c.conn.Write(buf)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
