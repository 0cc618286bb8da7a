package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/user-geo-service/internal/observability"
)

// UpstreamChecker verifies that the geolocation upstream is reachable.
type UpstreamChecker interface {
	CheckConnectivity(ctx context.Context) error
}

// Status is the most recent connectivity probe result.
type Status struct {
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

// Probe periodically checks geolocation upstream connectivity and records the
// latest result for the health endpoint. Probe failures never block request
// handling.
type Probe struct {
	scheduler *gocron.Scheduler
	checker   UpstreamChecker
	interval  time.Duration
	metrics   *observability.Metrics

	mu     sync.RWMutex
	status Status
}

// New creates a Probe. metrics may be nil.
func New(checker UpstreamChecker, interval time.Duration, metrics *observability.Metrics) *Probe {
	return &Probe{
		scheduler: gocron.NewScheduler(time.UTC),
		checker:   checker,
		interval:  interval,
		metrics:   metrics,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
func (p *Probe) Start() error {
	if p.checker == nil {
		log.Println("scheduler: no upstream checker configured; nothing to schedule")
		return nil
	}

	seconds := int(p.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := p.scheduler.Every(seconds).Seconds().StartImmediately().Do(p.CheckNow)
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// CheckNow runs one probe synchronously and records the result.
func (p *Probe) CheckNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := p.checker.CheckConnectivity(ctx)

	st := Status{
		Reachable: err == nil,
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		st.Error = err.Error()
		log.Printf("scheduler: upstream connectivity check failed: %v", err)
	}

	p.mu.Lock()
	p.status = st
	p.mu.Unlock()

	if p.metrics != nil {
		if st.Reachable {
			p.metrics.UpstreamReachable.Set(1)
		} else {
			p.metrics.UpstreamReachable.Set(0)
		}
	}
}

// Status returns the latest probe result. CheckedAt is zero before the first
// probe completes.
func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Stop stops the scheduler and cancels any future probes.
func (p *Probe) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}
