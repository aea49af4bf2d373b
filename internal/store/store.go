package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/loykin/modelfetch/internal/common"
	"github.com/loykin/modelfetch/internal/constants"
	_ "modernc.org/sqlite"
)

// Run is one recorded fetch attempt.
type Run struct {
	ID         int64
	StartedAt  time.Time
	URL        string // masked before it is stored
	OutputPath string
	StatusCode int
	Bytes      int
	Items      int
	Elapsed    time.Duration
	Success    bool
	Stage      string
	Error      string
}

// Store keeps run history in a SQLite database.
// Table <table>(id, started_at, url, output_path, status_code, bytes, items, elapsed_ms, success, stage, error)
type Store struct {
	DB    *sql.DB
	table string
}

var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DSN turns a file path into a sqlite DSN. Values that already look like a
// DSN (file: URIs or :memory:) are returned as-is.
func DSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = constants.DefaultHistoryPath
	}
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?%s", path, constants.SQLiteBusyPragma)
}

// Open connects to the database at path and ensures the history table exists.
func Open(path string) (*Store, error) {
	return OpenWithTable(path, constants.DefaultHistoryTable)
}

// OpenWithTable is Open with a custom table name.
func OpenWithTable(path, table string) (*Store, error) {
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, err
	}
	// SQLite allows only one writer
	db.SetMaxOpenConns(1)

	st := &Store{DB: db, table: table}
	if err := st.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	common.GetLogger().WithStore("sqlite").Debug("history store opened", "path", path, "table", table)
	return st, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) EnsureSchema() error {
	_, err := s.DB.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		items INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		stage TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return nil
}

// Record inserts r and returns its id. URL and error text are masked again
// on the way in.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	success := 0
	if r.Success {
		success = 1
	}
	res, err := s.DB.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(started_at, url, output_path, status_code, bytes, items, elapsed_ms, success, stage, error)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		common.MaskForDisplay(r.URL),
		r.OutputPath,
		r.StatusCode,
		r.Bytes,
		r.Items,
		r.Elapsed.Milliseconds(),
		success,
		r.Stage,
		common.MaskForDisplay(r.Error),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first. limit <= 0 uses the default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`SELECT id, started_at, url, output_path, status_code, bytes, items, elapsed_ms, success, stage, error
		FROM %s ORDER BY id DESC LIMIT ?`, s.table), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r         Run
			startedAt string
			elapsedMS int64
			success   int
		)
		if err := rows.Scan(&r.ID, &startedAt, &r.URL, &r.OutputPath, &r.StatusCode, &r.Bytes, &r.Items, &elapsedMS, &success, &r.Stage, &r.Error); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %d: bad started_at %q: %w", r.ID, startedAt, err)
		}
		r.StartedAt = t
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		r.Success = success == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Last returns the newest run, or sql.ErrNoRows when the table is empty.
func (s *Store) Last(ctx context.Context) (Run, error) {
	runs, err := s.Recent(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, sql.ErrNoRows
	}
	return runs[0], nil
}
