package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the loop's Prometheus instruments on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	ticks           prometheus.Counter
	tickErrors      *prometheus.CounterVec
	strategyLatency prometheus.Histogram
	stepLatency     prometheus.Histogram
	ballDistance    prometheus.Gauge
	controller      *prometheus.GaugeVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moab_ticks_total",
			Help: "Control ticks completed",
		}),
		tickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moab_tick_errors_total",
			Help: "Ticks that ended the session, by failing stage",
		}, []string{"stage"}),
		strategyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moab_strategy_duration_seconds",
			Help:    "Time spent deciding an action",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}),
		stepLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moab_step_duration_seconds",
			Help:    "Time spent in environment step, including pacing",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~500ms
		}),
		ballDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moab_ball_distance_meters",
			Help: "Distance of the ball from the plate centre at the last tick",
		}),
		controller: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "moab_session_running",
			Help: "1 while a session with the named controller is running",
		}, []string{"controller"}),
	}
	c.registry.MustRegister(c.ticks, c.tickErrors, c.strategyLatency, c.stepLatency, c.ballDistance, c.controller)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Tick(strategy, step time.Duration, distance float64) {
	if c == nil {
		return
	}
	c.ticks.Inc()
	c.strategyLatency.Observe(strategy.Seconds())
	c.stepLatency.Observe(step.Seconds())
	c.ballDistance.Set(distance)
}

func (c *Collector) TickError(stage string) {
	if c == nil {
		return
	}
	c.tickErrors.WithLabelValues(stage).Inc()
}

func (c *Collector) SessionStarted(controller string) {
	if c == nil {
		return
	}
	c.controller.WithLabelValues(controller).Set(1)
}

func (c *Collector) SessionEnded(controller string) {
	if c == nil {
		return
	}
	c.controller.WithLabelValues(controller).Set(0)
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
