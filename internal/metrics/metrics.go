package metrics

import (
	"net/http"
	"strconv"

	"actuator-quiz/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements app.Observer on top of a Prometheus registry and also
// records HTTP traffic.
type Metrics struct {
	registry *prometheus.Registry

	gamesStarted     prometheus.Counter
	answers          *prometheus.CounterVec
	resultsSubmitted *prometheus.CounterVec
	participants     prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actuator_games_started_total",
			Help: "Total number of game sessions started",
		}),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actuator_answers_total",
				Help: "Answers recorded, by correctness and difficulty",
			},
			[]string{"correct", "difficulty"},
		),
		resultsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actuator_results_submitted_total",
				Help: "Finished games by submission outcome",
			},
			[]string{"outcome"},
		),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actuator_participants",
			Help: "Registered participants",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		m.gamesStarted,
		m.answers,
		m.resultsSubmitted,
		m.participants,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) GameStarted() {
	m.gamesStarted.Inc()
}

func (m *Metrics) AnswerRecorded(a domain.UserAnswer) {
	m.answers.WithLabelValues(strconv.FormatBool(a.IsCorrect), string(a.Difficulty)).Inc()
}

func (m *Metrics) ResultSubmitted(outcome string) {
	m.resultsSubmitted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Participants(n int64) {
	m.participants.Set(float64(n))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
