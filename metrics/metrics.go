package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var PinataRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "explormate_pinata_requests_total",
}, []string{"operation"})
var PinataFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "explormate_pinata_failures_total",
}, []string{"operation", "statusCode"})
var PinataResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "explormate_pinata_response_time_seconds",
}, []string{"operation"})
var PinnedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "explormate_pinned_bytes_total",
}, []string{"kind"})
var ContractTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "explormate_contract_transactions_total",
}, []string{"method", "outcome"})

func init() {
	prometheus.MustRegister(PinataRequests)
	prometheus.MustRegister(PinataFailures)
	prometheus.MustRegister(PinataResponseTime)
	prometheus.MustRegister(PinnedBytes)
	prometheus.MustRegister(ContractTransactions)
}
