package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"TrendRadar/internal/model"
)

// SQLiteCache stores raw candles in a SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite candle cache opened: %s", dbPath)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			market    TEXT    NOT NULL,
			unit      INTEGER NOT NULL,
			utc       TEXT    NOT NULL,
			kst       TEXT,
			ts        INTEGER,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL,
			value     REAL,
			PRIMARY KEY (market, unit, utc)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candles_market_unit ON candles(market, unit)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// SaveBatch replaces the cached bars of market and unit with batch, so the cache always holds
// one contiguous fetch window. Rows without a UTC timestamp cannot be keyed and are skipped.
func (c *SQLiteCache) SaveBatch(market string, unit int, batch model.RawBatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM candles WHERE market = ? AND unit = ?`, market, unit); err != nil {
		return fmt.Errorf("clear %s: %w", market, err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO candles
		(market, unit, utc, kst, ts, open, high, low, close, volume, value)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range batch {
		if r.UTC == "" {
			continue
		}
		if _, err := stmt.Exec(market, unit, r.UTC, r.KST, r.Timestamp,
			r.Open, r.High, r.Low, r.Close, r.Volume, r.Value); err != nil {
			return fmt.Errorf("insert %s %s: %w", market, r.UTC, err)
		}
	}
	return tx.Commit()
}

// LoadBatch returns at most limit cached bars for market and unit, newest first like the
// exchange. A non-positive limit returns every cached bar.
func (c *SQLiteCache) LoadBatch(market string, unit, limit int) (model.RawBatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := c.db.Query(`SELECT utc, kst, ts, open, high, low, close, volume, value
		FROM candles WHERE market = ? AND unit = ? ORDER BY utc DESC LIMIT ?`, market, unit, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", market, err)
	}
	defer rows.Close()

	var batch model.RawBatch
	for rows.Next() {
		var (
			r                                   model.RawCandle
			kst                                 sql.NullString
			ts                                  sql.NullInt64
			open, high, low, cls, volume, value sql.NullFloat64
		)
		if err := rows.Scan(&r.UTC, &kst, &ts, &open, &high, &low, &cls, &volume, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", market, err)
		}
		r.Market = market
		r.KST = kst.String
		r.Timestamp = ts.Int64
		r.Open = nullable(open)
		r.High = nullable(high)
		r.Low = nullable(low)
		r.Close = nullable(cls)
		r.Volume = nullable(volume)
		r.Value = nullable(value)
		batch = append(batch, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, ErrNotFound
	}
	return batch, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite candle cache")
	return c.db.Close()
}
