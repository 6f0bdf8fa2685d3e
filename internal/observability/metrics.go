package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	httpDurationHistogram    *prometheus.HistogramVec
	depositSubmittedCounter  *prometheus.CounterVec
	depositResolvedCounter   *prometheus.CounterVec
	pendingDepositsGauge     prometheus.Gauge
	inconsistencyCounter     prometheus.Counter
	investmentOpenedCounter  prometheus.Counter
	maturitySweepRunsCounter *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		depositSubmittedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deposits_submitted_total",
			Help: "Deposit intents recorded as pending",
		}, []string{"method"})

		depositResolvedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deposits_resolved_total",
			Help: "Deposit resolutions by reviewer decision",
		}, []string{"decision"})

		pendingDepositsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "review_queue_pending_deposits",
			Help: "Current number of deposits waiting for review",
		})

		inconsistencyCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_inconsistencies_total",
			Help: "Settlements whose commit outcome is unknown and need operator repair",
		})

		investmentOpenedCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "investments_opened_total",
			Help: "Investment positions opened",
		})

		maturitySweepRunsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maturity_sweep_runs_total",
			Help: "Maturity sweeper run outcomes",
		}, []string{"result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			depositSubmittedCounter,
			depositResolvedCounter,
			pendingDepositsGauge,
			inconsistencyCounter,
			investmentOpenedCounter,
			maturitySweepRunsCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementDepositSubmitted(method string) {
	if depositSubmittedCounter == nil {
		return
	}
	depositSubmittedCounter.WithLabelValues(method).Inc()
}

func IncrementDepositResolved(decision string) {
	if depositResolvedCounter == nil {
		return
	}
	depositResolvedCounter.WithLabelValues(decision).Inc()
}

func SetPendingDeposits(n int) {
	if pendingDepositsGauge == nil {
		return
	}
	pendingDepositsGauge.Set(float64(n))
}

func IncrementInconsistency() {
	if inconsistencyCounter == nil {
		return
	}
	inconsistencyCounter.Inc()
}

func IncrementInvestmentOpened() {
	if investmentOpenedCounter == nil {
		return
	}
	investmentOpenedCounter.Inc()
}

func IncrementMaturitySweep(result string) {
	if maturitySweepRunsCounter == nil {
		return
	}
	maturitySweepRunsCounter.WithLabelValues(result).Inc()
}
