package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// collector exposes Metrics to Prometheus. Values are read from the atomics
// at scrape time, so nothing is double counted.
type collector struct {
	metrics *Metrics

	eventsSent       *prometheus.Desc
	eventsReceived   *prometheus.Desc
	eventsDropped    *prometheus.Desc
	broadcastsTotal  *prometheus.Desc
	connectedClients *prometheus.Desc
	uptime           *prometheus.Desc
}

func newCollector(m *Metrics) *collector {
	return &collector{
		metrics:          m,
		eventsSent:       prometheus.NewDesc("tasknote_daemon_events_sent_total", "Messages queued to subscribers", nil, nil),
		eventsReceived:   prometheus.NewDesc("tasknote_daemon_events_received_total", "Events published by clients", nil, nil),
		eventsDropped:    prometheus.NewDesc("tasknote_daemon_events_dropped_total", "Events lost to full queues", nil, nil),
		broadcastsTotal:  prometheus.NewDesc("tasknote_daemon_broadcasts_total", "Events stamped and fanned out", nil, nil),
		connectedClients: prometheus.NewDesc("tasknote_daemon_connected_clients", "Currently connected clients", nil, nil),
		uptime:           prometheus.NewDesc("tasknote_daemon_uptime_seconds", "Seconds since the daemon started", nil, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.eventsSent
	ch <- c.eventsReceived
	ch <- c.eventsDropped
	ch <- c.broadcastsTotal
	ch <- c.connectedClients
	ch <- c.uptime
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	m := c.metrics
	ch <- prometheus.MustNewConstMetric(c.eventsSent, prometheus.CounterValue, float64(m.GetEventsSent()))
	ch <- prometheus.MustNewConstMetric(c.eventsReceived, prometheus.CounterValue, float64(m.GetEventsReceived()))
	ch <- prometheus.MustNewConstMetric(c.eventsDropped, prometheus.CounterValue, float64(m.GetEventsDropped()))
	ch <- prometheus.MustNewConstMetric(c.broadcastsTotal, prometheus.CounterValue, float64(m.GetBroadcastsTotal()))
	ch <- prometheus.MustNewConstMetric(c.connectedClients, prometheus.GaugeValue, float64(m.GetConnectedClients()))
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(m.StartTime).Seconds())
}

// NewRegistry returns a registry carrying the daemon metrics plus the Go
// runtime and process collectors
func NewRegistry(m *Metrics) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(newCollector(m))
	return registry
}

// MetricsHandler serves m in the Prometheus text format
func MetricsHandler(m *Metrics) http.Handler {
	return promhttp.HandlerFor(NewRegistry(m), promhttp.HandlerOpts{})
}

// serveMetrics runs an HTTP listener for /metrics until ctx is done
func serveMetrics(ctx context.Context, addr string, m *Metrics, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(m))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
