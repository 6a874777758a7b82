package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sw33tLie/curaudit/pkg/report"
	"github.com/sw33tLie/curaudit/pkg/sweep"
)

const DefaultJob = "curaudit"

// RunMetrics are the totals of one audit run, exported for scheduled jobs.
type RunMetrics struct {
	EventsFetched   prometheus.Gauge
	PagesFetched    prometheus.Gauge
	EventsByAction  *prometheus.GaugeVec
	BlockedTotal    prometheus.Gauge
	BlockedByPolicy *prometheus.GaugeVec
	RunDuration     prometheus.Gauge
	LastSuccess     prometheus.Gauge
}

func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &RunMetrics{
		EventsFetched: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curaudit_events_fetched",
			Help: "Audit events fetched during the last run, overlapping windows included.",
		}),
		PagesFetched: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curaudit_pages_fetched",
			Help: "Audit pages fetched during the last run.",
		}),
		EventsByAction: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "curaudit_events_by_action",
			Help: "Audit events per action during the last run.",
		}, []string{"action"}),
		BlockedTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curaudit_blocked_packages",
			Help: "Blocked packages seen during the last run.",
		}),
		BlockedByPolicy: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "curaudit_blocked_by_policy",
			Help: "How many times each policy blocked a package during the last run.",
		}, []string{"policy"}),
		RunDuration: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curaudit_run_duration_seconds",
			Help: "Wall clock duration of the last run.",
		}),
		LastSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "curaudit_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
}

// Observe records the outcome of a finished run.
func (m *RunMetrics) Observe(agg *sweep.Aggregate, s report.Summary, elapsed time.Duration, finished time.Time) {
	m.EventsFetched.Set(float64(agg.EventsFetched))
	m.PagesFetched.Set(float64(agg.Pages))
	for action, n := range agg.ActionCounts {
		m.EventsByAction.WithLabelValues(action).Set(float64(n))
	}
	m.BlockedTotal.Set(float64(s.BlockedTotal))
	for _, p := range s.Policies {
		m.BlockedByPolicy.WithLabelValues(p.Name).Set(float64(p.Count))
	}
	m.RunDuration.Set(elapsed.Seconds())
	m.LastSuccess.Set(float64(finished.Unix()))
}

// Push replaces the metrics of job on the Pushgateway at url with everything in g.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer, client push.HTTPDoer) error {
	if job == "" {
		job = DefaultJob
	}
	p := push.New(url, job).Gatherer(g)
	if client != nil {
		p = p.Client(client)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
