package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/alpha_tracker/internal/domain"
)

type SQLiteStore struct {
	db      *sql.DB
	timeNow func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection also keeps
	// ":memory:" databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, timeNow: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS alpha_stats (
			date TEXT PRIMARY KEY,
			total_buy_qty REAL NOT NULL,
			alpha_points REAL NOT NULL,
			trade_count INTEGER NOT NULL,
			scoring TEXT NOT NULL DEFAULT 'linear',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trades (
			order_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			orig_qty REAL NOT NULL,
			executed_qty REAL NOT NULL,
			price REAL NOT NULL,
			status TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,
			settled_at DATETIME NOT NULL,
			quote_qty REAL NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_occurred_at ON trades(occurred_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// ActivityRepository Implementation

const summaryColumns = `date, total_buy_qty, alpha_points, trade_count, scoring, updated_at`

func (s *SQLiteStore) UpsertSummary(ctx context.Context, sum *domain.DailySummary) (*domain.DailySummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	key := domain.DateKey(sum.Date)
	prev, err := scanSummary(tx.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM alpha_stats WHERE date = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		prev = nil
	} else if err != nil {
		return nil, err
	}

	now := s.timeNow().UTC()
	query := `INSERT INTO alpha_stats (date, total_buy_qty, alpha_points, trade_count, scoring, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(date) DO UPDATE SET
			  total_buy_qty=excluded.total_buy_qty,
			  alpha_points=excluded.alpha_points,
			  trade_count=excluded.trade_count,
			  scoring=excluded.scoring,
			  updated_at=excluded.updated_at`
	if _, err := tx.ExecContext(ctx, query,
		key, sum.TotalQualifyingQty, sum.Points, sum.TradeCount, sum.Scoring, now, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	sum.UpdatedAt = now
	return prev, nil
}

func (s *SQLiteStore) QuerySummariesSince(ctx context.Context, since time.Time) ([]*domain.DailySummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM alpha_stats WHERE date >= ? ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, query, domain.DateKey(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DailySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestSummary(ctx context.Context) (*domain.DailySummary, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM alpha_stats ORDER BY date DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sum, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*domain.DailySummary, error) {
	var (
		sum  domain.DailySummary
		date string
	)
	if err := row.Scan(&date, &sum.TotalQualifyingQty, &sum.Points, &sum.TradeCount, &sum.Scoring, &sum.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q in alpha_stats: %w", date, err)
	}
	sum.Date = d
	return &sum, nil
}

func (s *SQLiteStore) UpsertTrades(ctx context.Context, records []domain.ActivityRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	exists, err := tx.PrepareContext(ctx, `SELECT EXISTS(SELECT 1 FROM trades WHERE order_id = ?)`)
	if err != nil {
		return 0, err
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO trades (order_id, symbol, side, orig_qty, executed_qty, price, status, occurred_at, settled_at, quote_qty, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(order_id) DO UPDATE SET
			  executed_qty=excluded.executed_qty,
			  status=excluded.status,
			  settled_at=excluded.settled_at,
			  quote_qty=excluded.quote_qty,
			  updated_at=excluded.updated_at`)
	if err != nil {
		return 0, err
	}
	defer upsert.Close()

	now := s.timeNow().UTC()
	added := 0
	for _, r := range records {
		var found bool
		if err := exists.QueryRowContext(ctx, r.ID).Scan(&found); err != nil {
			return 0, err
		}
		if _, err := upsert.ExecContext(ctx,
			r.ID, r.Symbol, string(r.Side), r.RequestedQty, r.FilledQty, r.Price, string(r.Status),
			r.OccurredAt.UTC(), r.SettledAt.UTC(), r.QuoteAmount, now, now); err != nil {
			return 0, fmt.Errorf("upsert trade %s: %w", r.ID, err)
		}
		if !found {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.ActivityRecord, error) {
	query := `SELECT order_id, symbol, side, orig_qty, executed_qty, price, status, occurred_at, settled_at, quote_qty FROM trades ORDER BY occurred_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.ActivityRecord
	for rows.Next() {
		var r domain.ActivityRecord
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Side, &r.RequestedQty, &r.FilledQty, &r.Price, &r.Status, &r.OccurredAt, &r.SettledAt, &r.QuoteAmount); err != nil {
			return nil, err
		}
		r.OccurredAt = r.OccurredAt.UTC()
		r.SettledAt = r.SettledAt.UTC()
		trades = append(trades, &r)
	}
	return trades, rows.Err()
}
