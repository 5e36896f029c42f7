package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blog"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderOutcomes *prom.CounterVec
	compileErrors  *prom.CounterVec
	saves          *prom.CounterVec
	httpDuration   *prom.HistogramVec
	commands       *prom.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the collectors and registers them with reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of post renders by terminal state",
			Buckets:   prom.DefBuckets,
		}, []string{"state"}),
		renderOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_outcomes_total",
			Help:      "Post renders by terminal state and layout",
		}, []string{"state", "layout"}),
		compileErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "compile_errors_total",
			Help:      "Body compile failures by offending component",
		}, []string{"component"}),
		saves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "admin_saves_total",
			Help:      "Admin saves by mode and result",
		}, []string{"mode", "result"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "code"}),
		commands: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Save and import command executions by message type and status",
			Buckets:   prom.DefBuckets,
		}, []string{"command", "status"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderOutcomes, pr.compileErrors, pr.saves, pr.httpDuration, pr.commands)
	return pr
}

func (p *PrometheusRecorder) ObserveRender(state string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(state).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(state, layout string) {
	if p == nil {
		return
	}
	p.renderOutcomes.WithLabelValues(state, layout).Inc()
}

func (p *PrometheusRecorder) IncCompileError(component string) {
	if p == nil {
		return
	}
	if component == "" {
		component = "markdown"
	}
	p.compileErrors.WithLabelValues(component).Inc()
}

func (p *PrometheusRecorder) IncSave(mode, result string) {
	if p == nil {
		return
	}
	p.saves.WithLabelValues(mode, result).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveCommand(command, status string, d time.Duration) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(command, status).Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves the metrics gathered by g.
func HTTPHandler(g prom.Gatherer) http.Handler {
	if g == nil {
		g = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
