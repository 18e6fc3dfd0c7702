package offline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// Prober checks whether the order service can be reached.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor watches connectivity and drains the queue. It runs a full Sync on
// the first successful probe and on every offline to online transition.
// While online, later probes only submit pending orders. Probes back off
// exponentially while offline.
type Monitor struct {
	queue    *Queue
	prober   Prober
	interval time.Duration
	log      logrus.FieldLogger

	backoff *backoff.ExponentialBackOff

	mu       sync.Mutex
	online   bool
	checked  bool
	stopChan chan struct{}
	done     chan struct{}

	// OnChange, when set, is called after every connectivity transition.
	OnChange func(online bool)
}

func NewMonitor(queue *Queue, prober Prober, interval, maxDelay time.Duration, log logrus.FieldLogger) *Monitor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if maxDelay < interval {
		maxDelay = interval
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = interval
	bo.MaxInterval = maxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2
	bo.Reset()

	return &Monitor{
		queue:    queue,
		prober:   prober,
		interval: interval,
		log:      log,
		backoff:  bo,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start runs the probe loop until Stop is called or ctx ends.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-timer.C:
				timer.Reset(m.Check(ctx))
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight check to finish.
func (m *Monitor) Stop() {
	close(m.stopChan)
	<-m.done
}

// Check probes once, syncs when due and returns the delay before the next
// probe.
func (m *Monitor) Check(ctx context.Context) time.Duration {
	err := m.prober.Ping(ctx)

	m.mu.Lock()
	wasOnline, firstCheck := m.online, !m.checked
	m.checked = true
	m.online = err == nil
	m.mu.Unlock()

	if err != nil {
		if wasOnline || firstCheck {
			m.log.WithError(err).Warn("order service unreachable, queueing offline")
			m.notify(false)
		}
		return m.backoff.NextBackOff()
	}

	m.backoff.Reset()
	cameOnline := !wasOnline
	if cameOnline {
		m.log.Info("order service reachable")
		m.notify(true)
	}

	// Failed orders are retried on reconnect only.
	run := m.queue.SyncPending
	if cameOnline {
		run = m.queue.Sync
	}
	if _, err := run(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		m.log.WithError(err).Warn("sync interrupted")
	}
	return m.interval
}

func (m *Monitor) notify(online bool) {
	if m.OnChange != nil {
		m.OnChange(online)
	}
}
