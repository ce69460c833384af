// Tradomata Scheduler — отправляет команды по расписанию.
//
// Scheduler:
//   - Раз в секунду проверяет due schedules в БД
//   - Публикует command.submitted в RabbitMQ
//   - Сдвигает next_due_at по cron-выражению или интервалу
//
// Несколько инстансов координируются через pg advisory lock:
// тики выполняет только лидер.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Tradomata/internal/mq"
	"github.com/shaiso/Tradomata/internal/repo"
	"github.com/shaiso/Tradomata/internal/scheduler"
	"github.com/shaiso/Tradomata/internal/telemetry"
)

const schedLockKey int64 = 721521

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting tradomata-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool (обязателен: расписания живут в БД)
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	scheduleRepo := repo.NewScheduleRepo(pool)

	// RabbitMQ (обязателен: команды доставляются движку через очередь)
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	sched := scheduler.New(scheduler.Config{
		ScheduleRepo: scheduleRepo,
		Publisher:    mq.NewPublisher(mqConn, logger),
		Logger:       logger,
	})

	// scheduler loop
	go func() {
		tk := time.NewTicker(1 * time.Second)
		defer tk.Stop()

		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", schedLockKey)
			}
		}()

		for {
			select {
			case <-tk.C:
				// пытаемся стать лидером (или подтвердить лидерство)
				if !hasLock {
					var ok bool
					if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", schedLockKey).Scan(&ok); err != nil {
						logger.Error("advisory lock error", "error", err)
						continue
					}
					hasLock = ok
				}

				if !hasLock {
					// не лидер — пропускаем тик
					continue
				}

				if err := sched.Tick(ctx); err != nil {
					logger.Error("scheduler tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	logger.Info("listening", "addr", port)
	if err := http.ListenAndServe(port, mux); err != nil {
		logger.Error("http server error", "error", err)
		cancel()
	}
}
