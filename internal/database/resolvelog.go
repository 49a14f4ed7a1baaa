package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/favilink/favilink/internal/model"
)

// ResolutionLog provides SQLite-based storage for favicon resolution
// outcomes. One row per hostname, updated in place on re-resolution, so
// the log answers "how was this domain resolved, and when" across builds.
//
// Design decision: We keep one row per hostname with UPSERT rather than an
// append-only event log. The stats command wants current state; history
// would grow unboundedly on sites rebuilt many times a day.
type ResolutionLog struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResolutionLog behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ResolutionLog under dbDir.
// With CreateIfNotExists the directory and database file are created;
// without it a missing database is an error.
func Open(dbDir string, opts Options) (*ResolutionLog, error) {
	dbPath := filepath.Join(dbDir, "favilink.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rl := &ResolutionLog{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rl.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rl, nil
}

// Close closes the database connection.
func (rl *ResolutionLog) Close() error {
	return rl.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rl *ResolutionLog) createTables() error {
	schema := `
	-- One row per resolved hostname, updated on re-resolution
	CREATE TABLE IF NOT EXISTS resolutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hostname TEXT NOT NULL,
		key TEXT NOT NULL,
		tier TEXT NOT NULL,
		value TEXT,
		duration_ms INTEGER,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(hostname)
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_key ON resolutions(key);
	CREATE INDEX IF NOT EXISTS idx_resolutions_tier ON resolutions(tier);
	CREATE INDEX IF NOT EXISTS idx_resolutions_timestamp ON resolutions(timestamp);
	`

	_, err := rl.db.ExecContext(context.Background(), schema)
	return err
}

// Record inserts or updates the resolution outcome for a hostname.
// Implements the resolver's Recorder interface.
func (rl *ResolutionLog) Record(ctx context.Context, res *model.Resolution) error {
	query := `
	INSERT INTO resolutions (hostname, key, tier, value, duration_ms, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(hostname) DO UPDATE SET
		key = excluded.key,
		tier = excluded.tier,
		value = excluded.value,
		duration_ms = excluded.duration_ms,
		timestamp = excluded.timestamp
	`

	_, err := rl.db.ExecContext(ctx, query,
		res.Hostname,
		res.Key,
		res.Tier,
		res.Value,
		res.Duration.Milliseconds(),
		res.Timestamp.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to record resolution: %w", err)
	}
	return nil
}

// GetResolution retrieves the stored outcome for a hostname, or nil if the
// hostname was never resolved.
func (rl *ResolutionLog) GetResolution(ctx context.Context, hostname string) (*model.Resolution, error) {
	query := `
	SELECT hostname, key, tier, value, duration_ms, timestamp
	FROM resolutions
	WHERE hostname = ?
	`

	var res model.Resolution
	var durationMS int64
	var timestamp string

	err := rl.db.QueryRowContext(ctx, query, hostname).Scan(
		&res.Hostname,
		&res.Key,
		&res.Tier,
		&res.Value,
		&durationMS,
		&timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}

	res.Duration = time.Duration(durationMS) * time.Millisecond
	res.Timestamp = parseTimestamp(timestamp)
	return &res, nil
}

// ListResolutions returns every stored resolution, optionally filtered by
// tier, newest first.
func (rl *ResolutionLog) ListResolutions(ctx context.Context, tier string) ([]model.Resolution, error) {
	query := `
	SELECT hostname, key, tier, value, duration_ms, timestamp
	FROM resolutions
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if tier != "" {
		query += " AND tier = ?"
		args = append(args, tier)
	}

	query += " ORDER BY timestamp DESC"

	rows, err := rl.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var results []model.Resolution
	for rows.Next() {
		var res model.Resolution
		var durationMS int64
		var timestamp string

		if err := rows.Scan(&res.Hostname, &res.Key, &res.Tier, &res.Value, &durationMS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}

		res.Duration = time.Duration(durationMS) * time.Millisecond
		res.Timestamp = parseTimestamp(timestamp)
		results = append(results, res)
	}

	return results, rows.Err()
}

// CountByTier returns how many hostnames were decided by each resolution
// tier. This is the headline of the stats command: it shows at a glance
// how much of the corpus is served locally, from the CDN, or not at all.
func (rl *ResolutionLog) CountByTier(ctx context.Context) (map[string]int, error) {
	query := `
	SELECT tier, COUNT(*) FROM resolutions
	GROUP BY tier
	`

	rows, err := rl.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count by tier: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tier count: %w", err)
		}
		counts[tier] = count
	}

	return counts, rows.Err()
}

// RecentFailures returns hostnames whose resolution failed within the
// given window.
func (rl *ResolutionLog) RecentFailures(ctx context.Context, window time.Duration) ([]model.Resolution, error) {
	query := `
	SELECT hostname, key, tier, value, duration_ms, timestamp
	FROM resolutions
	WHERE tier = ? AND timestamp > datetime('now', ?)
	ORDER BY timestamp DESC
	`

	modifier := fmt.Sprintf("-%d seconds", int(window.Seconds()))

	rows, err := rl.db.QueryContext(ctx, query, model.TierFailed, modifier)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent failures: %w", err)
	}
	defer rows.Close()

	var results []model.Resolution
	for rows.Next() {
		var res model.Resolution
		var durationMS int64
		var timestamp string

		if err := rows.Scan(&res.Hostname, &res.Key, &res.Tier, &res.Value, &durationMS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}

		res.Duration = time.Duration(durationMS) * time.Millisecond
		res.Timestamp = parseTimestamp(timestamp)
		results = append(results, res)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats, returning zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
