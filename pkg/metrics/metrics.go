package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a webhook request.
const (
	OutcomeForwarded        = "forwarded"
	OutcomeBadRequest       = "bad_request"
	OutcomeMalformedPayload = "malformed_payload"
	OutcomeForwardFailure   = "forward_failure"
)

var Outcomes = []string{OutcomeForwarded, OutcomeBadRequest, OutcomeMalformedPayload, OutcomeForwardFailure}

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scrubbed_requests_total", Help: "Webhook requests by outcome"},
		[]string{"outcome"},
	)
	AlertsRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scrubbed_alerts_relayed_total", Help: "Alerts contained in forwarded groups"},
	)
	ForwardResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scrubbed_forward_responses_total", Help: "Destination responses by status code"},
		[]string{"code"},
	)
	ForwardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scrubbed_forward_duration_seconds",
			Help:    "Duration of the forward to the destination",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

func init() {
	// Pre-create every outcome so the series exist before the first request.
	for _, o := range Outcomes {
		Requests.WithLabelValues(o)
	}
}

// MustRegister registers the relay collectors and the build info collector with the default registry.
func MustRegister() {
	prometheus.MustRegister(Requests, AlertsRelayed, ForwardResponses, ForwardDuration, versioncollector.NewCollector("scrubbed"))
}

func Handler() http.Handler { return promhttp.Handler() }
