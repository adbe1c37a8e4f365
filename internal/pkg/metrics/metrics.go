package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veriflow_document_uploads_total",
		Help: "Documents uploaded, by category.",
	}, []string{"category"})

	KYCDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veriflow_kyc_decisions_total",
		Help: "Admin KYC decisions, by resulting status.",
	}, []string{"status"})

	VerificationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veriflow_verification_transitions_total",
		Help: "Verification record status transitions.",
	}, []string{"from", "to"})

	NumbersAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veriflow_document_numbers_allocated_total",
		Help: "Document numbers allocated by the sequence generator.",
	})

	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veriflow_notifications_delivered_total",
		Help: "Notification events delivered, by channel.",
	}, []string{"channel"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veriflow_notifications_dropped_total",
		Help: "Notification events dropped because the queue was full.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
