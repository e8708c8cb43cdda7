// Package journal keeps a SQLite record of the requests a mock server
// handled, so they can be inspected after the server is gone.
package journal

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS calls (
	id          TEXT PRIMARY KEY,
	ts          INTEGER NOT NULL,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	matched     INTEGER NOT NULL,
	duration_us INTEGER NOT NULL
)`

// Entry is one recorded request.
type Entry struct {
	ID       string
	Time     time.Time
	Method   string
	URL      string
	Status   int
	Matched  bool
	Duration time.Duration
}

// Journal is a SQLite-backed request log.
type Journal struct {
	db      *sql.DB
	timeout time.Duration
}

// Open opens or creates a journal. Supported forms:
// - sqlite://path/to/journal.db
// - sqlite:./journal.db
// - a bare path
func Open(conn string) (*Journal, error) {
	dsn := parseConnectionString(conn)
	if dsn == "" {
		return nil, errors.New("empty journal path")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to journal")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create journal table")
	}

	return &Journal{db: db, timeout: 5 * time.Second}, nil
}

// Record stores e.
func (j *Journal) Record(e Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	matched := 0
	if e.Matched {
		matched = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO calls (id, ts, method, url, status, matched, duration_us) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), e.Method, e.URL, e.Status, matched, e.Duration.Microseconds())
	if err != nil {
		return errors.Wrapf(err, "record %s %s", e.Method, e.URL)
	}
	return nil
}

// List returns every entry, oldest first.
func (j *Journal) List() ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, method, url, status, matched, duration_us FROM calls ORDER BY ts, rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e        Entry
			ts       int64
			matched  int
			duration int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Method, &e.URL, &e.Status, &matched, &duration); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		e.Time = time.Unix(0, ts)
		e.Matched = matched == 1
		e.Duration = time.Duration(duration) * time.Microsecond
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return entries, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func parseConnectionString(conn string) string {
	conn = strings.TrimSpace(conn)
	if strings.HasPrefix(conn, "sqlite://") {
		return strings.TrimPrefix(conn, "sqlite://")
	}
	if strings.HasPrefix(conn, "sqlite:") {
		return strings.TrimPrefix(conn, "sqlite:")
	}
	return conn
}
