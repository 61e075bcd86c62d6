package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	"dispatch/internal/adapters/in/pgnotify"
	"dispatch/internal/adapters/out/fcm"
	kafkaout "dispatch/internal/adapters/out/kafka"
	pgout "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/outboxrepo"
	"dispatch/internal/adapters/out/rabbitmq"
	redisout "dispatch/internal/adapters/out/redis"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A local .env is optional; values already in the environment win.
	_ = godotenv.Load(".env")

	cfg, err := cmd.LoadConfig("configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.New(logging.Options{Service: "dispatch", Level: cfg.Log.Level, File: cfg.Log.File})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := 0
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("dispatch stopped with error", "error", err)
		code = 1
	} else {
		logger.Info("dispatch stopped")
	}
	stop()
	_ = closer.Close()
	os.Exit(code)
}

func run(ctx context.Context, cfg cmd.Config, logger *slog.Logger) error {
	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if cfg.DB.AutoMigrate {
		if err := pgout.Migrate(ctx, gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	amqpConn, amqpCh, err := rabbitmq.Connect(cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	defer amqpConn.Close()
	alerts, err := rabbitmq.NewAlertPublisher(amqpCh, cfg.RabbitMQ.AlertsExchange)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}

	producer, err := kafkaout.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	app, err := cmd.NewCompositionRoot(cfg, gormDB, cmd.Collaborators{
		Alerts:      alerts,
		Memo:        redisout.NewDeliveryMemo(rdb, cfg.Redis.DedupTTL),
		Push:        pushSender(cfg, logger),
		Changes:     kafkaout.NewChangePublisher(producer, cfg.Kafka.OrderChangedTopic),
		DeadLetters: kafkaout.NewDeadLetterWriter(producer, cfg.Kafka.DLQTopic),
	}, logger)
	if err != nil {
		return err
	}

	group, err := kafkain.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	consumer := kafkain.NewConsumer(group, []string{cfg.Kafka.OrderChangedTopic}, app.CreateChangeHandler(), logger)
	defer consumer.Close()

	router, err := httpin.NewRouter(ctx, httpin.NewServer(app.CreateHTTPHandlers(), logger), app.CreateAuthenticator(), logger)
	if err != nil {
		return err
	}

	scheduled, err := app.CreateJobs()
	if err != nil {
		return err
	}
	if err := scheduled.Manager.StartAll(); err != nil {
		return err
	}
	defer scheduled.Manager.StopAll()

	listener := pgnotify.NewListener(cfg.DSN(), outboxrepo.NotifyChannel, scheduled.Relay.Relay, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error { return consumer.Start(gctx) })
	g.Go(func() error {
		logger.Info("http server listening", "port", cfg.HTTP.Port)
		if err := router.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTP.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openDatabase(cfg cmd.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN(), PreferSimpleProtocol: true}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	return gormDB, nil
}

func pushSender(cfg cmd.Config, logger *slog.Logger) ports.PushSender {
	if cfg.Push.Endpoint == "" {
		return fcm.NewLogSender(logger)
	}
	return fcm.NewSender(&http.Client{Timeout: cfg.Push.Timeout}, cfg.Push.Endpoint, cfg.Push.Token)
}
