// Package server exposes the quantum security core over a thin HTTP
// boundary: random bit generation, QKD protocol runs, Bell testing,
// quantum-keyed payload encryption, and fleet status reporting. The
// core returns plain values; this layer owns serialization, CORS, and
// structured event logging.
package server

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/quantum-shield/qrng/qcrypto"
	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/sampler"
)

// Foundation labels the capability every endpoint is built on.
const Foundation = "Quantum Random Number Generator (QRNG)"

// An Opts packages together the arguments necessary to construct a
// Server.
type Opts struct {
	// Sampler is the measurement backend shared by every endpoint.
	// Must be non-nil.
	Sampler sampler.Sampler

	// Rand seeds the per-request randomness used for protocol basis
	// choices. Must be non-nil; may be seeded for reproducible runs.
	Rand *rand.Rand

	// Logger receives structured protocol events. Defaults to the
	// package-default logger.
	Logger *log.Logger
}

// A Server wires the quantum core to HTTP routes.
type Server struct {
	sampler sampler.Sampler
	gen     *qrng.Generator
	tracker *qrng.PerformanceTracker
	vault   *qcrypto.Vault
	seeds   *lockedSeeder
	log     *log.Logger
	router  *mux.Router
}

// New returns a Server configured per opts, or an error if the options
// are nonsensical.
func New(opts Opts) (*Server, error) {
	if opts.Sampler == nil {
		return nil, errors.New("must provide Sampler")
	}
	if opts.Rand == nil {
		return nil, errors.New("must provide Rand")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tracker := qrng.NewPerformanceTracker()
	gen, err := qrng.NewGenerator(opts.Sampler, tracker)
	if err != nil {
		return nil, err
	}
	s := &Server{
		sampler: opts.Sampler,
		gen:     gen,
		tracker: tracker,
		vault:   qcrypto.NewVault(),
		seeds:   newLockedSeeder(opts.Rand),
		log:     logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rng", s.handleRNG).Methods(http.MethodGet)
	r.HandleFunc("/qkd", s.handleQKD).Methods(http.MethodGet)
	r.HandleFunc("/e91/key", s.handleE91Key).Methods(http.MethodGet)
	r.HandleFunc("/e91/chsh", s.handleCHSH).Methods(http.MethodGet)
	r.HandleFunc("/ai/anomaly", s.handleAnomaly).Methods(http.MethodPost)
	r.HandleFunc("/defense/status", s.handleDefenseStatus).Methods(http.MethodGet)
	r.HandleFunc("/performance/analysis", s.handlePerformance).Methods(http.MethodGet)
	r.HandleFunc("/crypto/set_key", s.handleSetKey).Methods(http.MethodPost)
	r.HandleFunc("/crypto/encrypt", s.handleEncrypt).Methods(http.MethodPost)
	r.HandleFunc("/crypto/decrypt", s.handleDecrypt).Methods(http.MethodPost)
	s.router = r
}

// Handler returns the full middleware stack: routing plus
// allow-all-origins CORS, matching the boundary the frontends expect.
func (s *Server) Handler() http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(s.router)
}

// lockedSeeder hands out independent rand sources for per-request
// protocol runs; rand.Rand itself is not safe for concurrent use.
type lockedSeeder struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedSeeder(r *rand.Rand) *lockedSeeder {
	return &lockedSeeder{r: r}
}

func (l *lockedSeeder) next() *rand.Rand {
	l.mu.Lock()
	defer l.mu.Unlock()
	return rand.New(rand.NewSource(l.r.Int63()))
}
