// Command cfb_proxy terminates CFB-encrypted connections and relays the plaintext to an upstream server.
//
// Each connection starts with an ephemeral key exchange (see package kex), after which both directions are encrypted
// with the chosen block cipher in CFB mode.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net"

	"github.com/codahale/cfb/cfbstream"
	"github.com/codahale/cfb/kex"
)

func main() {
	var (
		listen  = flag.String("listen", "127.0.0.1:6060", "the address to listen on")
		connect = flag.String("connect", "127.0.0.1:5050", "the address to connect to")
		alg     = flag.String("alg", "aes-256", "the block cipher to use")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	listenConfig := new(net.ListenConfig)
	listener, err := listenConfig.Listen(context.Background(), "tcp", *listen)
	if err != nil {
		panic(err)
	}
	log.Info("listening", "addr", listener.Addr(), "alg", *alg)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Error("failed to accept connection", "err", err)
			continue
		}

		go func() {
			log.Info("accepted new connection", "addr", conn.RemoteAddr())
			defer func() {
				_ = conn.Close()
				log.Info("closed connection", "addr", conn.RemoteAddr())
			}()

			send, recv, err := kex.Exchange(conn, rand.Reader, *alg, false)
			if err != nil {
				log.Error("key exchange failed", "addr", conn.RemoteAddr(), "err", err)
				return
			}
			secure := cfbstream.NewConn(conn, send, recv)
			log.Info("key exchange complete", "addr", conn.RemoteAddr())

			log.Info("connecting", "addr", *connect)
			dialer := new(net.Dialer)
			upstream, err := dialer.DialContext(context.Background(), "tcp", *connect)
			if err != nil {
				log.Error("error connecting", "err", err)
				return
			}
			defer func() {
				_ = upstream.Close()
			}()

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				if _, err := io.Copy(upstream, secure); err != nil && !errors.Is(err, net.ErrClosed) {
					log.ErrorContext(ctx, "error reading from client", "err", err)
				}
				cancel()
			}()
			go func() {
				if _, err := io.Copy(secure, upstream); err != nil && !errors.Is(err, net.ErrClosed) {
					log.ErrorContext(ctx, "error writing to client", "err", err)
				}
				cancel()
			}()
			<-ctx.Done()
		}()
	}
}
