// Command cfbcrypt encrypts or decrypts stdin to stdout with CFB mode over a chosen block cipher.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/codahale/cfb/algo"
	"github.com/codahale/cfb/cfbstream"
)

func main() {
	var (
		alg     = flag.String("alg", "aes-256", "the block cipher: "+strings.Join(algo.Names(), ", "))
		keyHex  = flag.String("key", "", "the key, hex-encoded")
		ivHex   = flag.String("iv", "", "the IV, hex-encoded")
		decrypt = flag.Bool("d", false, "decrypt instead of encrypt")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	key, err := hex.DecodeString(*keyHex)
	if err != nil {
		log.Error("invalid key", "err", err)
		os.Exit(2)
	}

	iv, err := hex.DecodeString(*ivHex)
	if err != nil {
		log.Error("invalid IV", "err", err)
		os.Exit(2)
	}

	s, err := algo.NewCFB(*alg, key, iv)
	if err != nil {
		log.Error("unable to initialize cipher", "alg", *alg, "err", err)
		os.Exit(2)
	}
	defer s.Clear()

	out := bufio.NewWriter(os.Stdout)
	var n int64
	if *decrypt {
		n, err = io.Copy(out, cfbstream.NewReader(s, bufio.NewReader(os.Stdin)))
	} else {
		n, err = io.Copy(cfbstream.NewWriter(s, out), bufio.NewReader(os.Stdin))
	}
	if err == nil {
		err = out.Flush()
	}
	if err != nil {
		log.Error("error processing stream", "alg", *alg, "err", err)
		os.Exit(1)
	}
	log.Debug("done", "alg", *alg, "bytes", n, "decrypt", *decrypt)
}
