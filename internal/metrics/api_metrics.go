package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics содержит метрики HTTP-слоя query/mutation API.
type APIMetrics struct {
	// Счётчик запросов по операции и результату
	requestsTotal *prometheus.CounterVec

	// Гистограмма времени обработки операции
	requestDuration *prometheus.HistogramVec
}

// NewAPIMetrics создаёт новый экземпляр метрик API.
func NewAPIMetrics() *APIMetrics {
	return newAPIMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newAPIMetricsWithRegisterer(registerer prometheus.Registerer) *APIMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &APIMetrics{
		requestsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "crm_api_requests_total",
			Help: "Total number of API operations grouped by operation and result",
		}, []string{"operation", "result"}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "crm_api_request_duration_seconds",
			Help:    "Duration of API operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

// ObserveRequest фиксирует один обработанный запрос.
func (m *APIMetrics) ObserveRequest(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, result).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
