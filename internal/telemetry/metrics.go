package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики движка.
//
// Регистрируются в default registry и отдаются через promhttp.Handler()
// на /metrics endpoint каждого сервиса.
var (
	// QueueDepth — текущее количество work items в очереди.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradomata_queue_depth",
		Help: "Current number of work items in the priority queue.",
	})

	// QueueEvictions — количество вытеснений из переполненной очереди.
	QueueEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradomata_queue_evictions_total",
		Help: "Total number of items evicted due to queue saturation.",
	})

	// QueueRetries — количество запланированных retry.
	QueueRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradomata_queue_retries_total",
		Help: "Total number of retry reinsertions scheduled by the runner.",
	})

	// ItemsProcessed — обработанные work items по результату:
	// succeeded, failed, exhausted.
	ItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradomata_items_processed_total",
		Help: "Total number of work items processed by the queue runner.",
	}, []string{"result"})

	// CommandsFinished — завершённые команды по терминальному статусу.
	CommandsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradomata_commands_finished_total",
		Help: "Total number of commands that reached a terminal status.",
	}, []string{"status"})

	// StageTransitions — переходы команд между стадиями.
	StageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradomata_stage_transitions_total",
		Help: "Total number of command lifecycle stage transitions.",
	}, []string{"to"})

	// ConfirmationTimeouts — команды, отменённые по таймауту подтверждения.
	ConfirmationTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradomata_confirmation_timeouts_total",
		Help: "Total number of commands auto-cancelled waiting for confirmation.",
	})
)
