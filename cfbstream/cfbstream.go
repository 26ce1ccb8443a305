// Package cfbstream wraps io.Reader, io.Writer, and net.Conn values with CFB encryption.
//
// The wrappers provide confidentiality only. A modified ciphertext decrypts to garbled plaintext without any error, so
// streams which cross an untrusted network should be authenticated at a higher layer.
package cfbstream

import (
	"errors"
	"io"
	"net"

	"github.com/codahale/cfb"
)

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("cfb/cfbstream: write to closed writer")

// NewWriter wraps the given io.Writer, encrypting everything written to it with the given cfb.State.
//
// To avoid encrypting the written slices in-place, the writer copies the data before encrypting. If a Write call
// returns an error, then the State will be out of sync with the wrapped writer and the stream must be discarded.
//
// Closing the returned io.WriteCloser closes the wrapped writer if it is an io.Closer.
func NewWriter(s *cfb.State, w io.Writer) io.WriteCloser {
	return &cryptWriter{s: s, w: w, buf: nil, closed: false}
}

// NewReader wraps the given io.Reader, decrypting everything read from it with the given cfb.State.
func NewReader(s *cfb.State, r io.Reader) io.Reader {
	return &cryptReader{s: s, r: r}
}

type cryptWriter struct {
	s      *cfb.State
	w      io.Writer
	buf    []byte
	closed bool
}

func (c *cryptWriter) Write(p []byte) (n int, err error) {
	if c.closed {
		return 0, ErrClosed
	}

	c.buf = c.s.AppendEncrypt(c.buf[:0], p)
	for n < len(c.buf) {
		nn, err := c.w.Write(c.buf[n:])
		n += nn
		if err != nil && !errors.Is(err, io.ErrShortWrite) {
			return n, err
		}
		if nn == 0 && err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *cryptWriter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	clear(c.buf)
	if wc, ok := c.w.(io.Closer); ok {
		return wc.Close()
	}
	return nil
}

type cryptReader struct {
	s *cfb.State
	r io.Reader
}

func (c *cryptReader) Read(p []byte) (n int, err error) {
	n, err = c.r.Read(p)
	_ = c.s.Decrypt(p[:n], p[:n]) // decrypting in place never runs short
	return n, err
}

// A Conn is a net.Conn which encrypts everything written to it and decrypts everything read from it.
type Conn struct {
	net.Conn

	r io.Reader
	w io.WriteCloser
}

// NewConn wraps the given connection, encrypting outgoing data with send and decrypting incoming data with recv. The
// two states must be distinct.
func NewConn(conn net.Conn, send, recv *cfb.State) *Conn {
	return &Conn{
		Conn: conn,
		r:    NewReader(recv, conn),
		w:    &cryptWriter{s: send, w: conn, buf: nil, closed: false},
	}
}

// Read reads and decrypts data from the connection.
func (c *Conn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Write encrypts and writes data to the connection.
func (c *Conn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.w.Close()
}

var (
	_ io.WriteCloser = (*cryptWriter)(nil)
	_ io.Reader      = (*cryptReader)(nil)
	_ net.Conn       = (*Conn)(nil)
)
