package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wlcaudit/internal/model"
)

// dbFileName is the history database file inside the data directory.
const dbFileName = "wlcaudit.db"

// HistoryDB provides SQLite-based storage for analysis reports.
// Reports are keyed by device name, which is the controller hostname or,
// when the dump has no hostname line, the source path.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
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

// Open opens or creates a HistoryDB in the given directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

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

	// mode=rw refuses to create a missing file, mode=rwc creates it.
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

	// SQLite only supports one writer; batch analysis saves from several
	// goroutines, so all access goes through one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Another wlcaudit process (serve and analyze) may hold the write lock.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per analysis run
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		device TEXT NOT NULL,
		source TEXT NOT NULL,
		digest TEXT NOT NULL,
		analyzed_at TEXT NOT NULL,
		report_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_device ON analyses(device);
	CREATE INDEX IF NOT EXISTS idx_analyses_run ON analyses(run_id);

	-- Mismatched deviations per analysis, for tracking one finding over time
	CREATE TABLE IF NOT EXISTS deviations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER NOT NULL REFERENCES analyses(id),
		device TEXT NOT NULL,
		deviation_id TEXT NOT NULL,
		check_name TEXT NOT NULL,
		severity TEXT NOT NULL,
		current_value TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_deviations_device ON deviations(device, deviation_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Save stores a report and its mismatched deviations in one transaction.
// It returns the database ID of the new analysis row.
func (h *HistoryDB) Save(ctx context.Context, report *model.AnalysisReport) (id int64, err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	device := report.DeviceName()
	result, err := tx.ExecContext(ctx, `
	INSERT INTO analyses (run_id, device, source, digest, analyzed_at, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		device,
		report.Source,
		report.Digest,
		report.DateAnalyzed.UTC().Format(time.RFC3339Nano),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read analysis id: %w", err)
	}

	for _, d := range report.Mismatched() {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO deviations (analysis_id, device, deviation_id, check_name, severity, current_value)
		VALUES (?, ?, ?, ?, ?, ?)
		`, id, device, d.ID, d.Check, d.Severity.String(), d.CurrentValue)
		if err != nil {
			return 0, fmt.Errorf("failed to save deviation %s: %w", d.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return id, nil
}

// Latest retrieves the most recent report for a device.
// It returns nil without error if the device has no history.
func (h *HistoryDB) Latest(ctx context.Context, device string) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analyses
	WHERE device = ?
	ORDER BY id DESC
	LIMIT 1
	`
	return h.queryReport(ctx, query, device)
}

// ByID retrieves a report by its database ID.
// It returns nil without error if no such row exists.
func (h *HistoryDB) ByID(ctx context.Context, id int64) (*model.AnalysisReport, error) {
	return h.queryReport(ctx, `SELECT report_json FROM analyses WHERE id = ?`, id)
}

func (h *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.AnalysisReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListDevices returns every device with at least one stored analysis.
func (h *HistoryDB) ListDevices(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT device FROM analyses ORDER BY device`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []string
	for rows.Next() {
		var device string
		if err := rows.Scan(&device); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}

	return devices, rows.Err()
}

// History retrieves all reports for a device, newest first.
// Rows that no longer decode are skipped.
func (h *HistoryDB) History(ctx context.Context, device string) ([]*model.AnalysisReport, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT report_json FROM analyses
	WHERE device = ?
	ORDER BY id DESC
	`, device)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var reports []*model.AnalysisReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.AnalysisReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// AnalysisMetadata contains summary information about a stored analysis.
// It is used for listing history without loading the full report.
type AnalysisMetadata struct {
	// ID is the database row ID, accepted by ByID.
	ID int64

	RunID  string
	Device string
	Source string

	// Digest identifies the analyzed text; equal digests mean the
	// configuration did not change between runs.
	Digest string

	AnalyzedAt time.Time

	Summary model.Summary
}

// HistoryWithMetadata retrieves metadata for every analysis of a device,
// newest first.
func (h *HistoryDB) HistoryWithMetadata(ctx context.Context, device string) ([]AnalysisMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, run_id, device, source, digest, analyzed_at, summary
	FROM analyses
	WHERE device = ?
	ORDER BY id DESC
	`, device)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []AnalysisMetadata
	for rows.Next() {
		var meta AnalysisMetadata
		var analyzedAt string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.RunID, &meta.Device, &meta.Source, &meta.Digest, &analyzedAt, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.AnalyzedAt = parseTimestamp(analyzedAt)
		if summaryJSON.Valid && summaryJSON.String != "" {
			// A damaged summary leaves the zero value.
			_ = json.Unmarshal([]byte(summaryJSON.String), &meta.Summary)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// DeviationOccurrence records one analysis in which a deviation was seen.
type DeviationOccurrence struct {
	AnalysisID   int64
	RunID        string
	DeviationID  string
	Check        string
	Severity     string
	CurrentValue string
	AnalyzedAt   time.Time
}

// DeviationHistory lists the analyses of a device that reported the given
// deviation ID, newest first.
func (h *HistoryDB) DeviationHistory(ctx context.Context, device, deviationID string) ([]DeviationOccurrence, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT a.id, a.run_id, d.deviation_id, d.check_name, d.severity, d.current_value, a.analyzed_at
	FROM deviations d
	JOIN analyses a ON a.id = d.analysis_id
	WHERE d.device = ? AND d.deviation_id = ?
	ORDER BY a.id DESC
	`, device, deviationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deviations: %w", err)
	}
	defer rows.Close()

	var results []DeviationOccurrence
	for rows.Next() {
		var occ DeviationOccurrence
		var current sql.NullString
		var analyzedAt string

		if err := rows.Scan(&occ.AnalysisID, &occ.RunID, &occ.DeviationID, &occ.Check, &occ.Severity, &current, &analyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deviation: %w", err)
		}
		occ.CurrentValue = current.String
		occ.AnalyzedAt = parseTimestamp(analyzedAt)
		results = append(results, occ)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite CURRENT_TIMESTAMP
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
