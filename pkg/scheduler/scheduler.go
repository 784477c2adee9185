package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rsbar/rsbar/pkg/log"
	"github.com/rsbar/rsbar/pkg/metrics"
	"github.com/rsbar/rsbar/pkg/server"
)

// DefaultInterval is the update cadence for polled contexts
const DefaultInterval = time.Second

// Scheduler drives the periodic update cycle across all contexts
type Scheduler struct {
	server   *server.Server
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// New creates a scheduler for srv. A zero interval selects the default
// cadence.
func New(srv *server.Server, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		server:   srv,
		interval: interval,
		logger:   log.Component("scheduler"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// run is the main update loop
func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Scheduler started")

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			s.logger.Info().Msg("Scheduler stopped")
			return
		}
	}
}

// tick runs one update cycle. Errors are logged and the loop continues on
// the next tick.
func (s *Scheduler) tick() {
	timer := metrics.NewTimer()

	if err := s.server.Update(); err != nil {
		metrics.UpdateComponent("scheduler", false, err.Error())
		s.logger.Error().Err(err).Msg("Update cycle failed")
		return
	}

	timer.ObserveDuration(metrics.UpdateCycleDuration)
	metrics.UpdateCyclesTotal.Inc()
	metrics.UpdateComponent("scheduler", true, "")
}
