// Package metrics exposes daemon counters and gauges in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/1broseidon/snapzone/internal/movesize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snapzone"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Drag metrics
	DragEvents *prometheus.CounterVec
	Placements *prometheus.CounterVec

	// Topology metrics
	Desktops  prometheus.Gauge
	Monitors  prometheus.Gauge
	WorkAreas prometheus.Gauge

	// Settings metrics
	Reloads *prometheus.CounterVec

	registry *prometheus.Registry
}

var _ movesize.Observer = (*Metrics)(nil)

// New creates the metrics on a private registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DragEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drag_events_total",
				Help:      "Drag session outcomes by event",
			},
			[]string{"event"},
		),
		Placements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "keyboard_placements_total",
				Help:      "Keyboard and IPC placements by kind and result",
			},
			[]string{"kind", "result"},
		),

		Desktops: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "desktops",
			Help:      "Number of virtual desktops",
		}),
		Monitors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitors",
			Help:      "Number of active monitors",
		}),
		WorkAreas: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "work_areas",
			Help:      "Number of registered work areas",
		}),

		Reloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_reloads_total",
				Help:      "Settings reloads by result",
			},
			[]string{"result"},
		),
	}
}

// Observe implements movesize.Observer.
func (m *Metrics) Observe(e movesize.Event) {
	m.DragEvents.WithLabelValues(string(e)).Inc()
}

// SetTopology records the number of desktops, monitors and work areas.
func (m *Metrics) SetTopology(desktops, monitors, workAreas int) {
	m.Desktops.Set(float64(desktops))
	m.Monitors.Set(float64(monitors))
	m.WorkAreas.Set(float64(workAreas))
}

// ObservePlacement records a keyboard placement.
func (m *Metrics) ObservePlacement(kind string, ok bool) {
	m.Placements.WithLabelValues(kind, result(ok)).Inc()
}

// ObserveReload records a settings reload.
func (m *Metrics) ObserveReload(err error) {
	m.Reloads.WithLabelValues(result(err == nil)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("metrics endpoint listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
