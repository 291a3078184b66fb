package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/lookupreport/internal/category"
)

// ErrNotFound is returned when a search id does not exist.
var ErrNotFound = errors.New("search not found")

// Status is the outcome of a lookup.
type Status string

// Lookup outcomes.
const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Label returns the display form: "Found" or "Not Found". Errors are
// reported as not found.
func (s Status) Label() string {
	if s == StatusFound {
		return "Found"
	}
	return "Not Found"
}

// Search is one recorded lookup.
type Search struct {
	ID         int64             `json:"id"`
	Category   category.Category `json:"category"`
	Query      string            `json:"query"`
	Status     Status            `json:"status"`
	Message    string            `json:"message,omitempty"`
	ResponseMs int64             `json:"response_ms"`
	Digest     string            `json:"digest,omitempty"`
	Report     string            `json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Stats summarises all recorded lookups.
type Stats struct {
	Total int `json:"total"`

	// SuccessRate is the rounded percentage of found lookups; 100 when
	// nothing has been recorded.
	SuccessRate int `json:"success_rate"`

	// AvgResponse is the rounded mean response time in milliseconds.
	AvgResponse int64 `json:"avg_response_ms"`
}

// Store provides SQLite-backed search history.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file and its directory.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string, opts Options) (*Store, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		query TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT,
		response_ms INTEGER NOT NULL DEFAULT 0,
		report_digest TEXT,
		report TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_created ON searches(created_at);
	CREATE INDEX IF NOT EXISTS idx_searches_category ON searches(category);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Digest returns the hex SHA3-256 digest of a report.
func Digest(report string) string {
	sum := sha3.Sum256([]byte(report))
	return hex.EncodeToString(sum[:])
}

// Record stores a search and sets its ID and CreatedAt. The digest is
// derived from Report when Report is not empty.
func (s *Store) Record(ctx context.Context, search *Search) error {
	if search.CreatedAt.IsZero() {
		search.CreatedAt = s.now()
	}
	if search.Report != "" {
		search.Digest = Digest(search.Report)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO searches (category, query, status, message, response_ms, report_digest, report, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(search.Category),
		search.Query,
		string(search.Status),
		search.Message,
		search.ResponseMs,
		search.Digest,
		search.Report,
		search.CreatedAt.UTC().Format(storedLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get search id: %w", err)
	}
	search.ID = id
	return nil
}

// Recent returns the newest searches first, at most limit of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Search, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, category, query, status, message, response_ms, report_digest, created_at
	FROM searches
	ORDER BY created_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var out []Search
	for rows.Next() {
		var (
			search    Search
			cat       string
			status    string
			message   sql.NullString
			ms        int64
			digest    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&search.ID, &cat, &search.Query, &status, &message, &ms, &digest, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		search.Category = category.Category(cat)
		search.Status = Status(status)
		search.Message = message.String
		search.ResponseMs = ms
		search.Digest = digest.String
		search.CreatedAt = parseTimestamp(createdAt)
		out = append(out, search)
	}
	return out, rows.Err()
}

// Get returns a search including its stored report.
func (s *Store) Get(ctx context.Context, id int64) (*Search, error) {
	var (
		search    Search
		cat       string
		status    string
		message   sql.NullString
		ms        int64
		digest    sql.NullString
		report    sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, category, query, status, message, response_ms, report_digest, report, created_at
	FROM searches WHERE id = ?`, id).Scan(
		&search.ID, &cat, &search.Query, &status, &message, &ms, &digest, &report, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}

	search.Category = category.Category(cat)
	search.Status = Status(status)
	search.Message = message.String
	search.ResponseMs = ms
	search.Digest = digest.String
	search.Report = report.String
	search.CreatedAt = parseTimestamp(createdAt)
	return &search, nil
}

// Stats aggregates every recorded search.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		total int
		found int
		avg   sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       AVG(response_ms)
	FROM searches`, string(StatusFound)).Scan(&total, &found, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	return newStats(total, found, avg.Float64), nil
}

func newStats(total, found int, avgMs float64) Stats {
	st := Stats{Total: total, SuccessRate: 100}
	if total > 0 {
		st.SuccessRate = int(math.Round(float64(found) / float64(total) * 100))
		st.AvgResponse = int64(math.Round(avgMs))
	}
	return st
}

// Clear deletes every recorded search and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM searches")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// storedLayout has a fixed width so created_at sorts as text.
const storedLayout = "2006-01-02T15:04:05.000000000Z"

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known SQLite timestamp layout and returns the
// zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
