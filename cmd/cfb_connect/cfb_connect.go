// Command cfb_connect makes an encrypted connection to a cfb_proxy server, writes stdin to the server, and reads data
// to stdout.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/codahale/cfb/cfbstream"
	"github.com/codahale/cfb/kex"
)

func main() {
	log := slog.New(slog.Default().Handler())

	addr := flag.String("addr", "127.0.0.1:6060", "the address to connect to")
	alg := flag.String("alg", "aes-256", "the block cipher to use")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	log.InfoContext(ctx, "connecting", "addr", *addr)
	dialer := new(net.Dialer)
	conn, err := dialer.DialContext(ctx, "tcp", *addr)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = conn.Close()
		log.Info("closed connection")
	}()

	send, recv, err := kex.Exchange(conn, rand.Reader, *alg, true)
	if err != nil {
		panic(err)
	}
	secure := cfbstream.NewConn(conn, send, recv)
	log.InfoContext(ctx, "key exchange complete", "alg", *alg)

	go func() {
		if _, err := io.Copy(secure, os.Stdin); err != nil {
			log.ErrorContext(ctx, "error reading from stdin", "err", err)
		}
		cancel()
	}()
	go func() {
		if _, err := io.Copy(os.Stdout, secure); err != nil {
			log.ErrorContext(ctx, "error writing to stdout", "err", err)
		}
		cancel()
	}()
	<-ctx.Done()
}
