package replay

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"pcodestep/internal/stepper"
)

type cacheKey struct {
	trace *Trace
	time  stepper.Schedule
}

// Service replays traces on demand and caches the result per schedule. It
// implements stepper.EmulationService and is safe for concurrent use.
type Service struct {
	logger  *log.Logger
	latency time.Duration

	mu    sync.Mutex
	cache map[cacheKey]*Emulator
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger emulations are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithLatency makes every emulation take at least d.
func WithLatency(d time.Duration) Option {
	return func(s *Service) { s.latency = d }
}

// NewService returns a service with an empty cache.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger: log.New(io.Discard),
		cache:  make(map[cacheKey]*Emulator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CachedEmulator(trace stepper.Trace, time stepper.Schedule) (stepper.Emulator, bool) {
	t, ok := trace.(*Trace)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	emu, ok := s.cache[cacheKey{t, time}]
	if !ok {
		return nil, false
	}
	return emu, true
}

func (s *Service) Emulate(ctx context.Context, trace stepper.Trace, at stepper.Schedule) (stepper.Emulator, error) {
	t, ok := trace.(*Trace)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignTrace, trace)
	}
	if emu, ok := s.CachedEmulator(trace, at); ok {
		return emu, nil
	}

	start := time.Now()
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emu, err := t.Replay(at)
	if err != nil {
		s.logger.Debug("replay failed", "trace", t.Name(), "time", at, "err", err)
		return nil, err
	}
	s.mu.Lock()
	s.cache[cacheKey{t, at}] = emu
	s.mu.Unlock()
	s.logger.Debug("replayed", "trace", t.Name(), "time", at, "took", time.Since(start))
	return emu, nil
}

// Len returns the number of cached emulators.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
