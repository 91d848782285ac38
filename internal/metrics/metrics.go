package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarksAccepted counts successful attendance marks.
	MarksAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_marks_accepted_total",
		Help: "Attendance marks recorded successfully.",
	})

	// MarksRejected counts rejected marks by gate.
	MarksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classmark_marks_rejected_total",
		Help: "Attendance marks rejected, labeled by reason.",
	}, []string{"reason"})
)
