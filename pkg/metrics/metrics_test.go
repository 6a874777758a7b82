package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw33tLie/curaudit/pkg/curation"
	"github.com/sw33tLie/curaudit/pkg/report"
	"github.com/sw33tLie/curaudit/pkg/sweep"
)

func sampleRun() (*sweep.Aggregate, report.Summary) {
	agg := sweep.NewAggregate(time.Time{})
	agg.Merge(curation.Classify(curation.Page{
		Data: []curation.Event{
			{Action: "approved"},
			{Action: "blocked", Policies: []curation.Policy{{PolicyName: "license"}, {PolicyName: "security"}}},
		},
		Meta: curation.Meta{ResultCount: 2},
	}))
	return agg, report.Build(agg)
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRunMetrics(reg)

	agg, summary := sampleRun()
	finished := time.Unix(1760000000, 0)
	m.Observe(agg, summary, 90*time.Second, finished)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsByAction.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsByAction.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlockedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlockedByPolicy.WithLabelValues("security")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, 1760000000.0, testutil.ToFloat64(m.LastSuccess))
}

func TestPush(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	m := NewRunMetrics(reg)
	agg, summary := sampleRun()
	m.Observe(agg, summary, time.Second, time.Now())

	err := Push(context.Background(), server.URL, "", reg, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/"+DefaultJob, path)
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	NewRunMetrics(reg).EventsFetched.Set(1)

	err := Push(context.Background(), server.URL, "nightly", reg, server.Client())
	assert.Error(t, err)
}
