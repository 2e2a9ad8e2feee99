package repository

import (
	"context"
	"time"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// Publisher emits normalized snapshots for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, s *models.Snapshot) error
	Close() error
}

// Storage archives flattened transactions extracted from snapshots.
type Storage interface {
	StoreFundTransactions(ctx context.Context, identity string, fetchedAt time.Time, txns []models.FundTransaction) error
	StoreBankTransactions(ctx context.Context, identity string, fetchedAt time.Time, txns []models.BankTransaction) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters for the protocol client and pipeline.
type Metrics interface {
	RecordToolCall(tool, outcome string)
	RecordToolLatency(tool string, seconds float64)
	RecordParseDegrade(tool string)
	RecordSnapshotPublished(dataset string)
	RecordError(kind string)
}
