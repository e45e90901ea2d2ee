// qrngd serves the quantum security core over HTTP: random bit
// generation, E91/BB84 key distribution, CHSH Bell testing, and
// quantum-keyed payload encryption.
package main

import (
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/quantum-shield/qrng/qrng/sampler"
	"github.com/quantum-shield/qrng/server"
)

var (
	addr = flag.String("addr", ":5000", "The address to serve the HTTP API on.")
	seed = flag.Int64("seed", 0,
		"The seed for the simulated measurement source. Zero seeds from the clock.")
	bias = flag.Float64("bias", 0.5,
		"The probability of measuring |1>; values other than 0.5 model a defective source.")
)

func main() {
	flag.Parse()
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "qrngd",
	})

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	src := sampler.NewSimulated(rand.New(rand.NewSource(s)), *bias)

	srv, err := server.New(server.Opts{
		Sampler: src,
		Rand:    rand.New(rand.NewSource(s + 1)),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("building server", "err", err)
	}

	logger.Info("serving", "addr", *addr, "backend", src.Source(), "foundation", server.Foundation)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		logger.Fatal("serving", "err", err)
	}
}
