package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	pkgkafka "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/kafka"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/util"
)

// ClickHouseStorage archives flattened transactions to ClickHouse.
type ClickHouseStorage struct {
	db        *sql.DB
	fundTable string
	bankTable string
}

// NewClickHouseStorage creates ClickHouse-backed snapshot storage.
func NewClickHouseStorage(db *sql.DB, fundTable, bankTable string) repository.Storage {
	if fundTable == "" {
		fundTable = "fund_transactions"
	}
	if bankTable == "" {
		bankTable = "bank_transactions"
	}
	return &ClickHouseStorage{db: db, fundTable: fundTable, bankTable: bankTable}
}

// Chunk size per INSERT, keeps statement size bounded.
const insertChunk = 2000

func (s *ClickHouseStorage) StoreFundTransactions(ctx context.Context, identity string, fetchedAt time.Time, txns []models.FundTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	for start := 0; start < len(txns); start += insertChunk {
		end := start + insertChunk
		if end > len(txns) {
			end = len(txns)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, t := range txns[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				identity,
				fetchedAt,
				t.ISIN,
				t.FolioID,
				string(t.Type),
				util.ParseTimeDefault(t.Date, fetchedAt),
				t.Amount,
				t.Units,
				t.NAV,
			)
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (identity, fetched_at, isin, folio_id, order_type, txn_date, amount, units, nav) VALUES %s",
			s.fundTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert fund transactions: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStorage) StoreBankTransactions(ctx context.Context, identity string, fetchedAt time.Time, txns []models.BankTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	for start := 0; start < len(txns); start += insertChunk {
		end := start + insertChunk
		if end > len(txns) {
			end = len(txns)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, t := range txns[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				identity,
				fetchedAt,
				t.Bank,
				util.ParseTimeDefault(t.Date, fetchedAt),
				string(t.Type),
				t.Narration,
				t.Amount,
				t.Balance,
			)
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (identity, fetched_at, bank, txn_date, txn_type, narration, amount, balance) VALUES %s",
			s.bankTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert bank transactions: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // connection owned by pkg/clickhouse
}

// KafkaPublisher emits snapshots to a Kafka topic, keyed by identity
// so one identity's snapshots stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka-backed snapshot publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, snap *models.Snapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.Identity), snap)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
