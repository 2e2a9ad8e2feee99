package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	domrepo "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	pkgkafka "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/kafka"
)

// SnapshotArchiver consumes snapshot events from Kafka and archives
// the transactional datasets to storage. Non-transactional datasets
// pass through unarchived.
type SnapshotArchiver struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewSnapshotArchiver(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *SnapshotArchiver {
	return &SnapshotArchiver{topic: topic, storage: storage, metrics: metrics}
}

func (a *SnapshotArchiver) Topic() string { return a.topic }

func (a *SnapshotArchiver) Handle(ctx context.Context, b []byte) error {
	var env struct {
		Dataset   models.Dataset  `json:"dataset"`
		Identity  string          `json:"identity"`
		FetchedAt time.Time       `json:"fetchedAt"`
		Record    json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		a.metrics.RecordError("archiver_unmarshal")
		return err
	}

	start := time.Now()
	var err error
	switch env.Dataset {
	case models.DatasetFundTransactions:
		var rec models.FundTransactionsRecord
		if err = json.Unmarshal(env.Record, &rec); err == nil {
			err = a.storage.StoreFundTransactions(ctx, env.Identity, env.FetchedAt, rec.Transactions)
		}
	case models.DatasetBankTransactions:
		var rec models.BankTransactionsRecord
		if err = json.Unmarshal(env.Record, &rec); err == nil {
			err = a.storage.StoreBankTransactions(ctx, env.Identity, env.FetchedAt, rec.Transactions)
		}
	default:
		return nil
	}
	a.metrics.RecordToolLatency("archive_insert", time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordError("archiver_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*SnapshotArchiver)(nil)
