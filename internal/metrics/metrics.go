package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	proposalReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rotaboard",
			Name:      "proposal_received_total",
			Help:      "Count of AI schedule proposals received.",
		},
	)

	proposalResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotaboard",
			Name:      "proposal_resolved_total",
			Help:      "Count of AI proposals resolved by outcome.",
		},
		[]string{"outcome"},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotaboard",
			Name:      "gateway_request_total",
			Help:      "Count of AI gateway requests by outcome.",
		},
		[]string{"outcome"},
	)

	storeWriteFailure = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotaboard",
			Name:      "store_write_failure_total",
			Help:      "Count of failed blob writes by key.",
		},
		[]string{"key"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(proposalReceived, proposalResolved, gatewayRequests, storeWriteFailure)
	})
}

func IncProposalReceived() {
	proposalReceived.Inc()
}

func IncProposalResolved(outcome string) {
	proposalResolved.WithLabelValues(outcome).Inc()
}

func IncGatewayRequest(outcome string) {
	gatewayRequests.WithLabelValues(outcome).Inc()
}

func IncStoreWriteFailure(key string) {
	storeWriteFailure.WithLabelValues(key).Inc()
}
