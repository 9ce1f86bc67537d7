// Package storetest builds collector databases for tests.
package storetest

import (
	"database/sql"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Row is one table row keyed by column name. A nil value stores NULL.
type Row map[string]any

// With returns a copy of r overlaid with other.
func (r Row) With(other Row) Row {
	out := make(Row, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Stamp returns the columns every sample row carries. The monotonic clock
// reads sys*10 and the receive clock sys+5 so tests can tell them apart.
func Stamp(session int64, sys uint64) Row {
	return Row{
		"SessionId":     session,
		"SystemTime":    int64(sys),
		"MonotonicTime": int64(sys * 10),
		"ReceiveTime":   int64(sys + 5),
	}
}

// DB is a writable collector database under t.TempDir().
type DB struct {
	t    testing.TB
	db   *sql.DB
	path string
}

// New creates an empty collector database with every table in place.
func New(t testing.TB) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tkm.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(schema)
	require.NoError(t, err)

	d := &DB{t: t, db: db, path: path}
	t.Cleanup(d.Close)
	return d
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Close closes the writer. It is safe to call more than once.
func (d *DB) Close() {
	if d.db != nil {
		d.db.Close()
		d.db = nil
	}
}

// Exec runs a raw statement.
func (d *DB) Exec(query string, args ...any) {
	d.t.Helper()
	_, err := d.db.Exec(query, args...)
	require.NoError(d.t, err)
}

// Device inserts a device row.
func (d *DB) Device(id int64, name string) {
	d.t.Helper()
	d.Insert("tkmDevices", Row{"Id": id, "Hash": name + "-hash", "Name": name})
}

// Session inserts a session row bound to device.
func (d *DB) Session(id int64, hash, name string, device, cores int64) {
	d.t.Helper()
	d.Insert("tkmSessions", Row{
		"Id":        id,
		"Hash":      hash,
		"Name":      name,
		"CoreCount": cores,
		"Device":    device,
	})
}

// Insert adds one row to table. Columns are written in name order, so rows
// land in insertion order regardless of map iteration.
func (d *DB) Insert(table string, row Row) {
	d.t.Helper()

	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = row[c]
		marks[i] = "?"
	}

	q := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	d.Exec(q, args...)
}
