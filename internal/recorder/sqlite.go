package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stockpulse/internal/model"
)

// SQLiteRecorder persists run and signal history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			trigger_type TEXT,
			status       TEXT,
			evaluated    INTEGER,
			skipped      INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			signal       TEXT,
			pattern      TEXT,
			close        REAL,
			change_pct   REAL,
			rsi          REAL,
			macd         REAL,
			macd_signal  REAL,
			ema20        REAL,
			ema50        REAL,
			volume_ratio REAL,
			flags        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ticker_ts ON signals(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(timestamp, trigger_type, status, evaluated, skipped, error)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Trigger, rec.Status, rec.Evaluated, rec.Skipped, rec.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(res *model.SignalResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := res.Snapshot
	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, ticker, signal, pattern, close, change_pct, rsi,
		 macd, macd_signal, ema20, ema50, volume_ratio, flags)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), res.Ticker, string(res.Signal), res.Pattern,
		snap.Close, snap.ChangePct, snap.RSI,
		snap.MACD, snap.MACDSignal, snap.EMA20, snap.EMA50, snap.VolumeRatio,
		res.Flags.Count(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
