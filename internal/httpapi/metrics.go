package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwell-systems/birthlog/internal/tracker"
)

// Metrics holds the server's collectors on a private registry so that
// several servers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter

	deliveries    prometheus.Counter
	unlocks       *prometheus.CounterVec
	milestones    *prometheus.CounterVec
	shieldsUsed   prometheus.Counter
	recoveries    *prometheus.CounterVec
	currentStreak prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthlog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "birthlog_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthlog_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthlog_deliveries_logged_total",
			Help: "Birth records saved through the API",
		}),
		unlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthlog_achievements_unlocked_total",
				Help: "Achievements unlocked, by achievement",
			},
			[]string{"achievement"},
		),
		milestones: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthlog_streak_milestones_total",
				Help: "Streak milestones reached, by length in weeks",
			},
			[]string{"weeks"},
		),
		shieldsUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthlog_streak_shields_used_total",
			Help: "Streak shields consumed by missed weeks",
		}),
		recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthlog_streak_recoveries_total",
				Help: "Recovery challenges, by outcome",
			},
			[]string{"outcome"},
		),
		currentStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "birthlog_streak_current_weeks",
			Help: "Current weekly streak",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration, m.rateLimited,
		m.deliveries, m.unlocks, m.milestones, m.shieldsUsed, m.recoveries, m.currentStreak,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSave records the domain effects of a saved record.
func (m *Metrics) ObserveSave(out tracker.Outcome) {
	m.deliveries.Inc()
	m.observeUnlocks(out)
	if out.Streak == nil {
		return
	}
	res := out.Streak
	m.currentStreak.Set(float64(res.Data.CurrentStreak))
	if res.NewMilestone > 0 {
		m.milestones.WithLabelValues(strconv.Itoa(res.NewMilestone)).Inc()
	}
	if res.RecoveryCompleted {
		m.recoveries.WithLabelValues("completed").Inc()
	}
	if tr := res.Transition; tr != nil {
		m.shieldsUsed.Add(float64(tr.ShieldsUsed))
		if tr.RecoveryStarted {
			m.recoveries.WithLabelValues("started").Inc()
		}
	}
}

func (m *Metrics) observeUnlocks(out tracker.Outcome) {
	for _, a := range out.Unlocked {
		m.unlocks.WithLabelValues(a.ID).Inc()
	}
}

// Monitor wraps next to count requests and their latency. Paths are
// labelled by route template to keep record IDs out of label values.
func (m *Metrics) Monitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		m.requests.WithLabelValues(path, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		m.requestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
