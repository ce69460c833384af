// Tradomata Engine — движок торговых команд.
//
// Engine:
//   - Принимает команды через HTTP API и очередь commands.submitted
//   - Разбирает текст плагинами и валидирует intent
//   - Держит торговые команды в окне подтверждения
//   - Исполняет work items через приоритетную очередь с retry
//   - Публикует события жизненного цикла в RabbitMQ
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Tradomata/internal/api"
	"github.com/shaiso/Tradomata/internal/backend"
	"github.com/shaiso/Tradomata/internal/dispatch"
	"github.com/shaiso/Tradomata/internal/mq"
	"github.com/shaiso/Tradomata/internal/orchestrator"
	"github.com/shaiso/Tradomata/internal/queue"
	"github.com/shaiso/Tradomata/internal/repo"
	"github.com/shaiso/Tradomata/internal/telemetry"
	"github.com/shaiso/Tradomata/internal/validate"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting tradomata-engine")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool (опционально: без БД команды живут только в памяти)
	var commandRepo *repo.CommandRepo
	var scheduleRepo *repo.ScheduleRepo
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Warn("database not available, running without command journal", "error", err)
	} else {
		defer pool.Close()
		logger.Info("database connected")
		commandRepo = repo.NewCommandRepo(pool)
		scheduleRepo = repo.NewScheduleRepo(pool)
	}

	// RabbitMQ (опционально: без MQ остаётся HTTP/CLI ingestion)
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in HTTP-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Приоритетная очередь work items
	execQueue := queue.New[*orchestrator.ExecutionJob](queue.Config{})

	// Execution backend (бумажный брокер)
	paper := backend.NewPaperBackend()

	// Создаём orchestrator
	var sink orchestrator.EventSink
	if publisher != nil {
		sink = publisher
	}
	var commands orchestrator.CommandStore
	if commandRepo != nil {
		commands = commandRepo
	}

	orch := orchestrator.New(orchestrator.Config{
		Classifier: dispatch.DefaultDispatcher(logger),
		Validator:  validate.New(validate.Config{}),
		Backend:    paper,
		Queue:      execQueue,
		Sink:       sink,
		Commands:   commands,
		Conn:       mqConn,
		Logger:     logger,
	})

	// Реестр процессоров: основной бумажный backend
	registry := queue.NewRegistry[*orchestrator.ExecutionJob]()
	registry.Register("paper", orch.ExecutionProcessor())

	// Runner обрабатывает очередь single-flight
	runner := queue.NewRunner(execQueue, registry, logger)
	if err := runner.Start(ctx); err != nil {
		logger.Error("failed to start queue runner", "error", err)
		os.Exit(1)
	}

	// Запускаем orchestrator
	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	// HTTP API + /healthz + /metrics
	handler := api.NewHandler(api.Config{
		Orchestrator: orch,
		CommandRepo:  commandRepo,
		ScheduleRepo: scheduleRepo,
		Logger:       logger,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if v := os.Getenv("ENGINE_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем компоненты
	orch.Stop()
	runner.Stop()
	logger.Info("tradomata-engine stopped")
}
