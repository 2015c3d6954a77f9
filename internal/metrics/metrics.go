// Package metrics holds the prometheus collectors for the notify pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kube-rca/notify-gate/internal/client"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
}

// New - collector 생성 후 reg에 등록
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_requests_total",
			Help: "Notify requests by pipeline outcome",
		}, []string{"outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notify_upstream_request_duration_seconds",
			Help:    "Latency of outbound calls to Turnstile and Telegram",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream", "result"}),
	}
	reg.MustRegister(m.Requests, m.UpstreamLatency)
	return m
}

// ObserveOutcome - outcome은 "success" 또는 실패 종류
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

type instrumentedDoer struct {
	upstream string
	next     client.HTTPDoer
	hist     *prometheus.HistogramVec
}

// InstrumentDoer - 외부 호출 transport에 latency 측정을 씌운다
func (m *Metrics) InstrumentDoer(upstream string, next client.HTTPDoer) client.HTTPDoer {
	if m == nil {
		return next
	}
	return &instrumentedDoer{upstream: upstream, next: next, hist: m.UpstreamLatency}
}

func (d *instrumentedDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := d.next.Do(req)
	result := "error"
	if err == nil {
		result = strconv.Itoa(resp.StatusCode)
	}
	d.hist.WithLabelValues(d.upstream, result).Observe(time.Since(start).Seconds())
	return resp, err
}
