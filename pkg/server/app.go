package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	pkgch "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/clickhouse"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/config"
	xhttp "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/http"
	pkgkafka "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/kafka"
	applogger "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	archiver   pkgkafka.MessageHandler
	chClient   *pkgch.Client
	publisher  repository.Publisher
	jobQueue   *queue.RedisQueue
	httpServer *xhttp.Server
}

// New creates a new App instance. Kafka, ClickHouse and the refresh
// queue are optional; the HTTP surface always runs.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher repository.Publisher,
	jobQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		chClient:  chClient,
		publisher: publisher,
		jobQueue:  jobQueue,
	}
}

// SetConsumer attaches the snapshot consumer and its archive handler.
func (a *App) SetConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = c
	a.archiver = h
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	if a.consumer != nil && a.archiver != nil {
		a.consumer.RegisterHandler(a.archiver)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("snapshot archiver started", applogger.String("topic", a.archiver.Topic()))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			a.logger.Error("refresh queue start error", applogger.Error(err))
			return err
		}
		a.logger.Info("refresh queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			a.logger.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	// Flush any aggregated logs before the publisher goes away.
	a.logger.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
