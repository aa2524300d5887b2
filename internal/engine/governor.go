package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/model"
)

const (
	DefaultMaxConcurrency = 8
	DefaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultMaxRetryDelay  = 30 * time.Second
	defaultTransientDelay = 250 * time.Millisecond

	// jitter applied to rate-limit backoff: each delay lands within ±20%.
	retryJitter     = 0.2
	retryMultiplier = 2.0
)

// GovernorConfig controls admission and retry behaviour.
type GovernorConfig struct {
	MaxConcurrency    int           // in-flight Transport calls
	MaxRetries        int           // retries after a rate-limited attempt
	RetryBaseDelay    time.Duration // first rate-limit backoff
	MaxRetryDelay     time.Duration // cap on any single rate-limit backoff
	TransientDelay    time.Duration // fixed delay before the single server/network retry
	RequestsPerSecond float64       // 0 disables pacing
}

// DefaultGovernorConfig returns the stock limits.
func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		MaxConcurrency: DefaultMaxConcurrency,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: defaultRetryBaseDelay,
		MaxRetryDelay:  defaultMaxRetryDelay,
		TransientDelay: defaultTransientDelay,
	}
}

func (c GovernorConfig) normalize() GovernorConfig {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = defaultMaxRetryDelay
	}
	if c.MaxRetryDelay < c.RetryBaseDelay {
		c.MaxRetryDelay = c.RetryBaseDelay
	}
	if c.TransientDelay <= 0 {
		c.TransientDelay = defaultTransientDelay
	}
	return c
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GovernorOption customises a Governor.
type GovernorOption func(*Governor)

// WithSleep replaces the backoff sleeper. Tests use it to record delays.
func WithSleep(fn SleepFunc) GovernorOption {
	return func(g *Governor) { g.sleep = fn }
}

// WithRegistry records governor metrics into r instead of a private registry.
func WithRegistry(r metrics.Registry) GovernorOption {
	return func(g *Governor) { g.registry = r }
}

// Governor bounds the number of in-flight Transport calls and applies the
// retry policy to their failures. The semaphore and the in-flight counter
// are the only state shared between submissions.
type Governor struct {
	cfg      GovernorConfig
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	sleep    SleepFunc
	registry metrics.Registry

	inflight atomic.Int64
	peak     atomic.Int64

	attempts  metrics.Counter
	retries   metrics.Counter
	throttled metrics.Counter
	peakGauge metrics.Gauge
	latency   metrics.Timer
}

// NewGovernor creates a Governor from cfg. Zero fields take defaults.
func NewGovernor(cfg GovernorConfig, opts ...GovernorOption) *Governor {
	cfg = cfg.normalize()
	g := &Governor{
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = metrics.NewRegistry()
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	g.attempts = metrics.GetOrRegisterCounter("governor.attempts", g.registry)
	g.retries = metrics.GetOrRegisterCounter("governor.retries", g.registry)
	g.throttled = metrics.GetOrRegisterCounter("governor.throttled", g.registry)
	g.peakGauge = metrics.GetOrRegisterGauge("governor.inflight.max", g.registry)
	g.latency = metrics.GetOrRegisterTimer("governor.latency", g.registry)
	return g
}

// MaxConcurrency returns the admission bound.
func (g *Governor) MaxConcurrency() int { return g.cfg.MaxConcurrency }

// Submit runs fn through g and returns its value. See Governor.Do for the
// retry policy.
func Submit[T any](ctx context.Context, g *Governor, req model.Request, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := g.Do(ctx, req, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do runs fn, retrying according to the failure kind:
//
//   - rate limited: up to MaxRetries retries, exponential backoff with
//     ±20% jitter, never shorter than the provider's Retry-After and never
//     longer than MaxRetryDelay
//   - server error / network: one retry after TransientDelay
//   - anything else: returned immediately
//
// Each attempt holds one concurrency slot; backoff sleeps hold none. When
// attempts are exhausted or ctx is done the last failure is returned.
func (g *Governor) Do(ctx context.Context, req model.Request, fn func(context.Context) error) error {
	var (
		throttles int
		rateBO    *backoff.ExponentialBackOff
		transient backoff.BackOff
	)
	for {
		err := g.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		kind := client.KindOf(err)
		metrics.GetOrRegisterCounter("governor.failures."+kind.String(), g.registry).Inc(1)
		if ctx.Err() != nil {
			return err
		}

		var delay time.Duration
		switch kind {
		case client.KindRateLimited:
			g.throttled.Inc(1)
			if throttles >= g.cfg.MaxRetries {
				log.WithField("request", req.String()).Warnf("giving up after %d rate-limited retries", throttles)
				return err
			}
			throttles++
			if rateBO == nil {
				rateBO = g.newRateLimitBackOff()
			}
			delay = rateBO.NextBackOff()
			if ra := client.RetryAfter(err); ra > delay {
				delay = ra
			}
			if delay > g.cfg.MaxRetryDelay {
				delay = g.cfg.MaxRetryDelay
			}
			log.WithField("request", req.String()).Warnf("rate limited, retry %d/%d in %v", throttles, g.cfg.MaxRetries, delay)
		case client.KindServerError, client.KindNetwork:
			if transient != nil {
				return err
			}
			transient = backoff.NewConstantBackOff(g.cfg.TransientDelay)
			delay = transient.NextBackOff()
			log.WithField("request", req.String()).Debugf("%v, retrying in %v", err, delay)
		default:
			return err
		}

		g.retries.Inc(1)
		if serr := g.sleep(ctx, delay); serr != nil {
			return err
		}
	}
}

func (g *Governor) newRateLimitBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     g.cfg.RetryBaseDelay,
		RandomizationFactor: retryJitter,
		Multiplier:          retryMultiplier,
		MaxInterval:         g.cfg.MaxRetryDelay,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

// attempt admits one call, runs it and releases its slot.
func (g *Governor) attempt(ctx context.Context, fn func(context.Context) error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return &client.APIError{Kind: client.KindNetwork, Op: "admit", Err: err}
		}
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return &client.APIError{Kind: client.KindNetwork, Op: "admit", Err: err}
	}
	defer g.sem.Release(1)

	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	g.peakGauge.Update(g.peak.Load())

	g.attempts.Inc(1)
	start := time.Now()
	err := fn(ctx)
	g.latency.UpdateSince(start)
	return err
}

// GovernorStats is a point-in-time copy of the governor's counters.
type GovernorStats struct {
	Attempts     int64
	Retries      int64
	Throttled    int64
	PeakInFlight int64
	Failures     map[string]int64
	MeanLatency  time.Duration
}

// Stats returns the counters recorded so far.
func (g *Governor) Stats() GovernorStats {
	st := GovernorStats{
		Attempts:     g.attempts.Count(),
		Retries:      g.retries.Count(),
		Throttled:    g.throttled.Count(),
		PeakInFlight: g.peak.Load(),
		Failures:     map[string]int64{},
		MeanLatency:  time.Duration(g.latency.Mean()),
	}
	const prefix = "governor.failures."
	g.registry.Each(func(name string, m interface{}) {
		if c, ok := m.(metrics.Counter); ok && len(name) > len(prefix) && name[:len(prefix)] == prefix {
			st.Failures[name[len(prefix):]] = c.Count()
		}
	})
	return st
}
