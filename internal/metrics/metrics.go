package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	EmailsSent      prometheus.Counter
	EmailsDeleted   prometheus.Counter
	Resets          *prometheus.CounterVec
	StoredEmails    prometheus.Gauge
	PromptRequests  *prometheus.CounterVec
	ModelRounds     prometheus.Histogram
	ToolCalls       *prometheus.CounterVec
	PromptDurations prometheus.Histogram
}

// NewMetrics creates the metric set and registers it with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_assistant_http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"service", "method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mail_assistant_http_request_duration_seconds",
			Help:    "Time spent handling HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "mail_assistant_emails_sent_total",
			Help: "Total number of emails created through the send operation",
		}),
		EmailsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mail_assistant_emails_deleted_total",
			Help: "Total number of emails deleted",
		}),
		Resets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_assistant_resets_total",
			Help: "Total number of store resets to the seed set",
		}, []string{"trigger"}),
		StoredEmails: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mail_assistant_stored_emails",
			Help: "Number of emails currently stored",
		}),
		PromptRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_assistant_prompt_requests_total",
			Help: "Total number of prompts handled by the bridge",
		}, []string{"outcome"}),
		ModelRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mail_assistant_model_rounds",
			Help:    "Model completion rounds needed per prompt",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20},
		}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_assistant_tool_calls_total",
			Help: "Total number of tool calls requested by the model",
		}, []string{"tool", "outcome"}),
		PromptDurations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mail_assistant_prompt_duration_seconds",
			Help:    "Time spent answering a prompt end to end",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
	}
}
