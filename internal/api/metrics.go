package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	groupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_groups_created_total",
		Help: "Number of groups created.",
	})

	expensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_expenses_recorded_total",
		Help: "Number of expenses accepted and persisted.",
	})

	validationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_validation_rejections_total",
		Help: "Expense submissions rejected by the split validator, by reason.",
	}, []string{"reason"})

	balanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_balance_computations_total",
		Help: "Number of full balance replays performed.",
	})
)
