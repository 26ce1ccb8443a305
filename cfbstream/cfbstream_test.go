package cfbstream_test

import (
	"bytes"
	"crypto/aes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/codahale/cfb"
	"github.com/codahale/cfb/cfbstream"
)

func TestNewWriter(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := cfbstream.NewWriter(newState(t), buf)
		if _, err := w.Write([]byte("here's one message; ")); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("and another")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		r := cfbstream.NewReader(newState(t), bytes.NewReader(buf.Bytes()))
		b, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}

		if got, want := b, []byte("here's one message; and another"); !bytes.Equal(got, want) {
			t.Errorf("NewReader(NewWriter(%x)) = %x, want = %x", want, got, want)
		}
	})

	t.Run("io.Copy", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := cfbstream.NewWriter(newState(t), buf)
		message := make([]byte, 2345)
		n, err := io.CopyBuffer(w, bytes.NewReader(message), make([]byte, 100))
		if err != nil {
			t.Fatal(err)
		}
		if got, want := n, int64(len(message)); got != want {
			t.Errorf("Copy(cfbstream, buf) = %d bytes, want = %d", got, want)
		}

		// The ciphertext must match a single call over the whole message.
		want := newState(t).AppendEncrypt(nil, message)
		if got := buf.Bytes(); !bytes.Equal(got, want) {
			t.Errorf("ciphertext = %x, want = %x", got, want)
		}

		r := cfbstream.NewReader(newState(t), bytes.NewReader(buf.Bytes()))
		b, err := io.ReadAll(io.LimitReader(r, int64(len(message))))
		if err != nil {
			t.Fatal(err)
		}

		if got, want := b, message; !bytes.Equal(got, want) {
			t.Errorf("NewReader(NewWriter(%x)) = %x, want = %x", want, got, want)
		}
	})

	t.Run("empty write", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := cfbstream.NewWriter(newState(t), buf)
		for _, s := range []string{"first", "", "second"} {
			if _, err := w.Write([]byte(s)); err != nil {
				t.Fatal(err)
			}
		}

		b, err := io.ReadAll(cfbstream.NewReader(newState(t), buf))
		if err != nil {
			t.Fatal(err)
		}

		if got, want := string(b), "firstsecond"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("write after close", func(t *testing.T) {
		w := cfbstream.NewWriter(newState(t), io.Discard)
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		if _, err := w.Write([]byte("late")); !errors.Is(err, cfbstream.ErrClosed) {
			t.Errorf("Write() err = %v, want = %v", err, cfbstream.ErrClosed)
		}
	})

	t.Run("does not modify input", func(t *testing.T) {
		w := cfbstream.NewWriter(newState(t), io.Discard)
		message := []byte("leave me alone")
		if _, err := w.Write(message); err != nil {
			t.Fatal(err)
		}

		if got, want := string(message), "leave me alone"; got != want {
			t.Errorf("message = %q, want = %q", got, want)
		}
	})

	t.Run("write error", func(t *testing.T) {
		w := cfbstream.NewWriter(newState(t), errWriter{})
		if _, err := w.Write([]byte("doomed")); !errors.Is(err, errBroken) {
			t.Errorf("Write() err = %v, want = %v", err, errBroken)
		}
	})
}

func TestConn(t *testing.T) {
	a, b := net.Pipe()
	left := cfbstream.NewConn(a, newState(t), newState(t))
	right := cfbstream.NewConn(b, newState(t), newState(t))
	defer func() {
		_ = left.Close()
		_ = right.Close()
	}()

	go func() {
		_, _ = left.Write([]byte("ping"))
	}()

	buf := make([]byte, 4)
	if _, err := io.ReadFull(right, buf); err != nil {
		t.Fatal(err)
	}

	if got, want := string(buf), "ping"; got != want {
		t.Errorf("Read() = %q, want = %q", got, want)
	}
}

var errBroken = errors.New("broken")

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errBroken
}

func newState(t *testing.T) *cfb.State {
	t.Helper()

	block, err := aes.NewCipher(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	return cfb.New(block, make([]byte, 16))
}
