// Package store decodes collector telemetry from a read-only SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anpopa/tkmviewer-sub000/internal/logger"
	"github.com/anpopa/tkmviewer-sub000/internal/model"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"
)

// ErrNotOpen is returned when a query runs against a closed store.
var ErrNotOpen = errors.New("database not open")

// QueryError reports a failed decoder query. The message stays generic;
// the driver error is available through Unwrap.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return e.Op + ": SQL query error" }

func (e *QueryError) Unwrap() error { return e.Err }

// Store wraps a read-only SQLite connection to a collector database.
type Store struct {
	db   *sql.DB
	path string
	log  log.Logger
}

// Open opens the SQLite file at path read-only and checks that it is a
// database. A missing file is an error; nothing is ever created.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps every query strictly sequential.
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	return &Store{
		db:   db,
		path: path,
		log:  logger.NewLoggerWithContext("store"),
	}, nil
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// entryQuery describes one time-ranged, session-scoped table scan.
type entryQuery struct {
	op     string
	table  string
	source model.TimeSource
	hash   string
	start  int64
	end    int64

	// complete rejects rows holding any NULL column.
	complete bool
}

func (q entryQuery) sql() string {
	col := q.source.Column()
	return fmt.Sprintf(
		"SELECT * FROM '%s' WHERE %s >= %d AND %s < %d AND SessionId IS "+
			"(SELECT Id FROM '%s' WHERE Hash IS ? LIMIT 1)",
		q.table, col, q.start, col, q.end, SessionsTable)
}

// columnSetter assigns one textual column value to an entry.
type columnSetter[T any] func(e *T, col, val string)

// queryEntries runs q and decodes each row by column name. On failure the
// partial result is discarded and a *QueryError is returned.
func queryEntries[T any](ctx context.Context, s *Store, q entryQuery, set columnSetter[T], index func(*T, int)) ([]*T, error) {
	out, err := scanRows(ctx, s, q.sql(), []any{q.hash}, q.complete, set)
	if err != nil {
		s.logQueryError(q.op, err)
		return nil, &QueryError{Op: q.op, Err: err}
	}
	for i, e := range out {
		index(e, i)
	}
	return out, nil
}

func scanRows[T any](ctx context.Context, s *Store, query string, args []any, complete bool, set columnSetter[T]) ([]*T, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	vals := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}

	out := []*T{}
	for rows.Next() {
		for i := range vals {
			vals[i] = nil
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		e := new(T)
		valid := true
		for i, col := range cols {
			text, ok := columnText(vals[i])
			if !ok {
				if complete {
					valid = false
					break
				}
				continue
			}
			set(e, col, text)
		}
		if valid {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}

// columnText renders a driver value the way SQLite prints it as text.
// REAL values use plain decimal notation so integer columns stored as REAL
// keep their magnitude. NULL reports false.
func columnText(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case string:
		return v, true
	case []byte:
		return string(v), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	default:
		return fmt.Sprint(v), true
	}
}

func (s *Store) logQueryError(op string, err error) {
	s.log.Warn().Str("op", op).Err(err).Msg("SQL query failed")
}

// setTimestamp handles the three clock columns shared by every table.
// It reports whether col was one of them.
func setTimestamp(ts *model.Timestamps, col, val string) bool {
	switch col {
	case "SystemTime":
		ts.System = parseUint(val)
	case "MonotonicTime":
		ts.Monotonic = parseUint(val)
	case "ReceiveTime":
		ts.Receive = parseUint(val)
	default:
		return false
	}
	return true
}

// numericPrefix returns the longest leading run of s that looks like a
// number, mirroring strtoll/strtod leniency.
func numericPrefix(s string, float bool) string {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := false
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits = true
	}
	if float && end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits = true
		}
	}
	if !digits {
		return ""
	}
	if float && end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '-' || s[exp] == '+') {
			exp++
		}
		if exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
				exp++
			}
			end = exp
		}
	}
	return s[:end]
}

func parseInt(s string) int64 {
	p := numericPrefix(s, false)
	if p == "" {
		return 0
	}
	n, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(p, "-") {
				return -1 << 63
			}
			return 1<<63 - 1
		}
		return 0
	}
	return n
}

func parseUint(s string) uint64 {
	p := numericPrefix(s, false)
	if p == "" || strings.HasPrefix(p, "-") {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(p, "+"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	p := numericPrefix(s, true)
	if p == "" {
		return 0
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0
	}
	return f
}
