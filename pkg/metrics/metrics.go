package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "educonnect",
		Name:      "submissions_total",
		Help:      "Assignment submissions accepted.",
	})

	GradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "educonnect",
		Name:      "grades_total",
		Help:      "Submissions graded, by grading mode.",
	}, []string{"mode"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "educonnect",
		Name:      "notifications_total",
		Help:      "Notifications created, by type.",
	}, []string{"type"})

	UploadsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "educonnect",
		Name:      "uploads_rejected_total",
		Help:      "Uploads refused because of their file type, by purpose.",
	}, []string{"purpose"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
