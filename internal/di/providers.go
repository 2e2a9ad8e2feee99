package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/fimcp"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/handler/api"
	internalrepo "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/repository"
	icache "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/service/cache"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/usecase"
	pkgcache "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/cache"
	pkgch "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/clickhouse"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/config"
	pkgkafka "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/kafka"
	xlogger "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/metrics"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/queue"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	return xlogger.New(&xlogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSessionFactory builds protocol sessions against the remote service.
func ProvideSessionFactory(cfg *config.Config, lgr *xlogger.Logger) usecase.SessionFactory {
	return func() usecase.ToolSession {
		return fimcp.New(fimcp.Config{
			BaseURL:         cfg.Fi.BaseURL,
			ProtocolVersion: cfg.Fi.ProtocolVersion,
			ClientName:      cfg.Fi.ClientName,
			ClientVersion:   cfg.Fi.ClientVersion,
			Timeout:         cfg.Fi.Timeout,
		}, fimcp.WithLogger(lgr))
	}
}

// ProvideCache creates the dataset cache, Redis when configured and an
// in-process cache otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix("moneydoothas"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	// Memory in front of Redis keeps hot identities off the wire.
	return pkgcache.NewLayeredCache(c), nil
}

// ProvideClickHouseClient creates a ClickHouse client with the archive
// schema. Returns nil when the archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".fund_transactions (identity String, fetched_at DateTime, isin String, folio_id String, order_type String, txn_date DateTime, amount Float64, units Float64, nav Float64) ENGINE=MergeTree ORDER BY (identity, isin, txn_date)",
		"CREATE TABLE IF NOT EXISTS " + db + ".bank_transactions (identity String, fetched_at DateTime, bank String, txn_date DateTime, txn_type String, narration String, amount Float64, balance Float64) ENGINE=MergeTree ORDER BY (identity, bank, txn_date)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideStorage creates the transaction archive repository.
func ProvideStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	if chClient == nil {
		return nil
	}
	db := cfg.ClickHouse.Database
	return internalrepo.NewClickHouseStorage(chClient.DB(), db+".fund_transactions", db+".bank_transactions")
}

// ProvideKafkaProducer creates a Kafka producer, nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the snapshot publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the snapshot consumer, nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSnapshotArchiver registers the archive handler for the
// snapshot topic. Nil without storage to archive into.
func ProvideSnapshotArchiver(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.SnapshotArchiver {
	if store == nil {
		return nil
	}
	return usecase.NewSnapshotArchiver(cfg.Kafka.Topic, store, m)
}

// ProvideFinancialService creates the dataset service.
func ProvideFinancialService(
	factory usecase.SessionFactory,
	cache pkgcache.Service,
	publisher repository.Publisher,
	m repository.Metrics,
	lgr *xlogger.Logger,
	cfg *config.Config,
) *usecase.FinancialDataService {
	return usecase.NewFinancialDataService(factory, cache, publisher, m, lgr, cfg.Cache.TTL)
}

// ProvideRefreshQueue creates the Redis-backed refresh queue, nil when
// disabled.
func ProvideRefreshQueue(cfg *config.Config, lgr *xlogger.Logger, svc *usecase.FinancialDataService) *queue.RedisQueue {
	if !cfg.Queue.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("moneydoothas"))
	q.RegisterJob(usecase.NewRefreshJob(svc))
	return q
}

// ProvideHandler creates the HTTP handler with its side services.
func ProvideHandler(cfg *config.Config, lgr *xlogger.Logger, svc *usecase.FinancialDataService, q *queue.RedisQueue) *api.FinancialEchoHandler {
	h := api.NewFinancialEchoHandler(lgr, svc)
	if cfg.Cache.Redis.Enabled {
		h.SetResponseCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}))
	} else {
		h.SetResponseCache(icache.NewTTLCache())
	}
	if q != nil {
		h.SetQueue(q)
	}
	return h
}

// kafkaLogPublisher adapts the Kafka producer to the batch publisher
// the log collector expects.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *xlogger.Logger,
	handler *api.FinancialEchoHandler,
	consumer *pkgkafka.Consumer,
	archiver *usecase.SnapshotArchiver,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	publisher repository.Publisher,
	q *queue.RedisQueue,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if producer != nil {
		lgr.AddCollector(&xlogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".logs",
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, lgr, handler, chClient, publisher, q)
	if consumer != nil && archiver != nil {
		app.SetConsumer(consumer, archiver)
	}
	return app
}
