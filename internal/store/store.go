package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// Default timeout for catalog queries
const defaultTimeout = 5 * time.Second

// Catalog persists resolved items in a SQLite database.
type Catalog struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   CatalogStats
	statsMu sync.RWMutex
	txStart time.Time
}

// New opens (creating if needed) the catalog database at dbPath. The path
// must point at the database file itself and its parent directory must
// already exist; startup.LoadConfig validates that before this runs.
func New(ctx context.Context, dbPath string) (*Catalog, error) {
	logging.Info("Catalog database path: %s", dbPath)

	// WAL mode keeps readers unblocked during scan writes; busy_timeout
	// prevents "database is locked" errors under concurrency.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	c := &Catalog{
		db:     db,
		dbPath: dbPath,
	}

	if err := c.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog database initialized at %s", dbPath)
	return c, nil
}

func (c *Catalog) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS items (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		sort_name TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL UNIQUE,
		parent_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		is_container INTEGER NOT NULL DEFAULT 0,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_items_parent_path ON items(parent_path);
	CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
	CREATE INDEX IF NOT EXISTS idx_items_name ON items(name COLLATE NOCASE);

	-- Composite index for the child listing query
	CREATE INDEX IF NOT EXISTS idx_items_parent_kind ON items(parent_path, kind);
	`

	_, err = c.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// BeginBatch starts a transaction for batch writes during a scan.
// The caller must finish it with EndBatch.
func (c *Catalog) BeginBatch() (*sql.Tx, error) {
	c.mu.Lock()
	txStart := time.Now()

	// Background context: the transaction's lifetime is governed by
	// EndBatch, not a call-scoped timeout.
	tx, err := c.db.BeginTx(context.Background(), nil)
	c.mu.Unlock()

	if err != nil {
		recordQuery("begin_transaction", txStart, err)
		return nil, err
	}

	c.txStart = txStart
	return tx, nil
}

// EndBatch commits the transaction, or rolls it back when err is non-nil.
func (c *Catalog) EndBatch(tx *sql.Tx, err error) error {
	start := c.txStart

	if err != nil {
		rbErr := tx.Rollback()
		recordQuery("rollback", start, rbErr)
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	commitErr := tx.Commit()
	recordQuery("commit", start, commitErr)
	return commitErr
}

// UpsertItem inserts or updates one item row within a transaction. The
// updated_at column always advances so DeleteMissing can treat it as a
// last-seen marker.
func (c *Catalog) UpsertItem(tx *sql.Tx, row *ItemRow) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_item", start, err) }()

	query := `
	INSERT INTO items (id, name, sort_name, path, parent_path, kind, is_container, created, modified, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(path) DO UPDATE SET
		id = excluded.id,
		name = excluded.name,
		sort_name = excluded.sort_name,
		parent_path = excluded.parent_path,
		kind = excluded.kind,
		is_container = excluded.is_container,
		created = excluded.created,
		modified = excluded.modified,
		updated_at = strftime('%s', 'now')
	`

	_, err = tx.ExecContext(context.Background(), query,
		row.ID,
		row.Name,
		row.SortName,
		row.Path,
		row.ParentPath,
		row.Kind,
		row.IsContainer,
		row.Created.Unix(),
		row.Modified.Unix(),
	)
	return err
}

// DeleteMissing removes rows not touched since cutoff. Call it inside the
// same batch that upserted the current scan so a partial scan rolls back
// atomically with its deletions.
func (c *Catalog) DeleteMissing(tx *sql.Tx, cutoff time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_missing", start, err) }()

	result, err := tx.ExecContext(context.Background(),
		"DELETE FROM items WHERE updated_at < ?",
		cutoff.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByPath retrieves a single item by path. Returns sql.ErrNoRows when
// the path is not cataloged.
func (c *Catalog) GetByPath(ctx context.Context, path string) (*ItemRow, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_by_path", start, err) }()

	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	SELECT id, name, sort_name, path, parent_path, kind, is_container, created, modified
	FROM items WHERE path = ?
	`

	row, err := scanRow(c.db.QueryRowContext(ctx, query, path))
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ListChildren returns the direct children of a container path in catalog
// order: sort name when present, name otherwise, path breaking ties.
func (c *Catalog) ListChildren(ctx context.Context, parentPath string) ([]*ItemRow, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_children", start, err) }()

	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	SELECT id, name, sort_name, path, parent_path, kind, is_container, created, modified
	FROM items WHERE parent_path = ?
	ORDER BY CASE WHEN sort_name != '' THEN sort_name ELSE name END, path
	`

	rows, err := c.db.QueryContext(ctx, query, parentPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("failed to close rows: %v", closeErr)
		}
	}()

	var out []*ItemRow
	for rows.Next() {
		var row *ItemRow
		row, err = scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByKind returns the number of stored items per kind.
func (c *Catalog) CountByKind(ctx context.Context) (map[string]int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_items", start, err) }()

	c.mu.RLock()
	defer c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM items GROUP BY kind")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("failed to close rows: %v", closeErr)
		}
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err = rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// RefreshItemMetrics republishes the per-kind item gauges from the stored
// counts. Called after each completed scan.
func (c *Catalog) RefreshItemMetrics(ctx context.Context) error {
	counts, err := c.CountByKind(ctx)
	if err != nil {
		return err
	}
	for kind, n := range counts {
		metrics.StoreItemsTotal.WithLabelValues(kind).Set(float64(n))
	}
	return nil
}

// UpdateStats replaces the cached scan statistics.
func (c *Catalog) UpdateStats(stats CatalogStats) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats = stats
}

// GetStats returns the most recent scan statistics.
func (c *Catalog) GetStats() CatalogStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Vacuum optimizes the database after large deletions.
func (c *Catalog) Vacuum() error {
	start := time.Now()
	var err error
	defer func() { recordQuery("vacuum", start, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, err = c.db.ExecContext(ctx, "VACUUM")
	return err
}

// scanTarget is satisfied by both *sql.Row and *sql.Rows.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanRow(s scanTarget) (*ItemRow, error) {
	var (
		row               ItemRow
		isContainer       int
		created, modified int64
	)
	err := s.Scan(
		&row.ID, &row.Name, &row.SortName, &row.Path, &row.ParentPath,
		&row.Kind, &isContainer, &created, &modified,
	)
	if err != nil {
		return nil, err
	}
	row.IsContainer = isContainer != 0
	row.Created = time.Unix(created, 0)
	row.Modified = time.Unix(modified, 0)
	return &row, nil
}

// recordQuery records catalog query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(duration)
}
