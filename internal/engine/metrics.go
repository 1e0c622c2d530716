package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dotc_interrupt_windows_opened_total",
		Help: "Opened interrupt windows across all rooms",
	})
	windowsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dotc_interrupt_windows_cancelled_total",
		Help: "Interrupt windows resolved as cancelled",
	})
	windowsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dotc_interrupt_windows_resolved_total",
		Help: "Interrupt windows resolved as active (effect dispatched)",
	})
	votesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dotc_vote_rounds_completed_total",
		Help: "Accusation vote rounds that reached a closed state",
	})
	intentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dotc_intents_rejected_total",
		Help: "Player intents rejected by the engine, by reason",
	}, []string{"reason"})
)
