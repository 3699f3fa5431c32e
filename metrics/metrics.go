package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BorrowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lender_borrows_total",
		Help: "Loans created.",
	})

	ReturnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lender_returns_total",
		Help: "Loans returned.",
	})

	OverdueTransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lender_overdue_transitions_total",
		Help: "Loans moved from active to overdue by the sweep.",
	})

	// ConflictsTotal separates bad requests from system faults in
	// monitoring; op is borrow, return or delete.
	ConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lender_conflicts_total",
		Help: "Operations rejected because of current state.",
	}, []string{"op"})
)
