package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transfers_total",
		Help: "Transfer outcomes by type and terminal status",
	}, []string{"type", "status"})

	occConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_occ_conflicts_total",
		Help: "Conditional balance updates that lost a version race",
	})
)
