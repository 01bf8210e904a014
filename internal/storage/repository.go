package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"card-price-index/internal/model"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const (
	upsertRecordSQL = `INSERT INTO price_history (
        set_code,
        product_type,
        period_label,
        product_name,
        period_start,
        period_end,
        price,
        volume,
        collected_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    )
    ON CONFLICT (set_code, product_type, period_label, product_name, period_end) DO UPDATE
    SET
        period_start = EXCLUDED.period_start,
        price        = EXCLUDED.price,
        volume       = EXCLUDED.volume,
        collected_at = EXCLUDED.collected_at;`

	listAllRecordsSQL = `SELECT
        set_code,
        product_type,
        period_label,
        product_name,
        period_start,
        period_end,
        price,
        volume,
        collected_at
    FROM price_history
    ORDER BY period_end, set_code, product_name;`

	countRecordsSQL = `SELECT COUNT(*) FROM price_history;`

	deleteRecordsBeforeSQL = `DELETE FROM price_history WHERE period_end < $1;`
)

// RecordStore defines operations for price-history persistence.
type RecordStore interface {
	UpsertRecords(ctx context.Context, records []model.Record) error
	LoadRecords(ctx context.Context) ([]model.Record, error)
	CountRecords(ctx context.Context) (int64, error)
	DeleteRecordsBefore(ctx context.Context, cutoff time.Time) error
}

// Store is the pgx-backed price-history repository. It satisfies the
// coverage analyzer's dataset-loader contract via LoadRecords.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertRecords persists records, refreshing any existing row for the same
// signature and period end.
func (s *Store) UpsertRecords(ctx context.Context, records []model.Record) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	for _, r := range records {
		_, execErr := pool.Exec(ctx, upsertRecordSQL,
			r.GroupSet,
			r.ProductType,
			r.PeriodLabel,
			r.ProductName,
			r.PeriodStart,
			r.PeriodEnd,
			r.Price.String(),
			r.Volume,
			r.CollectedAt,
		)
		if execErr != nil {
			return fmt.Errorf("upsert record: %w", execErr)
		}
	}
	return nil
}

// LoadRecords loads the full dataset in canonical order.
func (s *Store) LoadRecords(ctx context.Context) ([]model.Record, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAllRecordsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list records: %w", queryErr)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountRecords counts stored records.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countRecordsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count records: %w", scanErr)
	}
	return count, nil
}

// DeleteRecordsBefore removes records with a period end before cutoff.
func (s *Store) DeleteRecordsBefore(ctx context.Context, cutoff time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteRecordsBeforeSQL, cutoff); execErr != nil {
		return fmt.Errorf("delete records before: %w", execErr)
	}
	return nil
}

func scanRecord(rows pgx.Rows) (model.Record, error) {
	var (
		rec      model.Record
		priceStr string
	)

	if err := rows.Scan(
		&rec.GroupSet,
		&rec.ProductType,
		&rec.PeriodLabel,
		&rec.ProductName,
		&rec.PeriodStart,
		&rec.PeriodEnd,
		&priceStr,
		&rec.Volume,
		&rec.CollectedAt,
	); err != nil {
		return model.Record{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse price: %w", err)
	}
	rec.Price = price
	// Normalize to UTC midnight so dates key consistently with the CSV
	// path in alignment maps.
	rec.PeriodStart = truncateDay(rec.PeriodStart)
	rec.PeriodEnd = truncateDay(rec.PeriodEnd)

	return rec, nil
}

var _ RecordStore = (*Store)(nil)

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
