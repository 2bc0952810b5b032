// Package audit keeps per-run extraction history in a local SQLite database
// so fallback coverage can be tracked across builds. Everything here is best
// effort - the scan itself never depends on it.
package audit

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	source      TEXT NOT NULL,
	format      TEXT NOT NULL,
	files       INTEGER NOT NULL,
	keys        INTEGER NOT NULL,
	leaves      INTEGER NOT NULL,
	warnings    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS findings (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	file    TEXT NOT NULL,
	key     TEXT NOT NULL,
	leaves  INTEGER NOT NULL,
	class   TEXT NOT NULL,
	detail  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS findings_run ON findings(run_id);
`

// Run describes one completed scan.
type Run struct {
	ID       string
	Started  time.Time
	Elapsed  time.Duration
	Source   string
	Format   string
	Files    int
	Keys     int
	Leaves   int
	Warnings int
}

// Finding is a per-file outcome: a successful extraction (empty Class) or a
// recorded problem.
type Finding struct {
	File   string
	Key    string
	Leaves int
	Class  string
	Detail string
}

// Record appends one run with its findings to the database, creating it when
// necessary.
func Record(path string, run Run, findings []Finding) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return fmt.Errorf("unable to open audit database '%s': %w", path, err)
	}
	defer conn.Close()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("unable to prepare audit schema: %w", err)
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn,
		`INSERT INTO runs (id, started_at, elapsed_ms, source, format, files, keys, leaves, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			run.ID,
			run.Started.UTC().Format(time.RFC3339Nano),
			run.Elapsed.Milliseconds(),
			run.Source,
			run.Format,
			run.Files,
			run.Keys,
			run.Leaves,
			run.Warnings,
		}})
	if err != nil {
		return fmt.Errorf("unable to record run: %w", err)
	}

	for _, f := range findings {
		err = sqlitex.Execute(conn,
			`INSERT INTO findings (run_id, file, key, leaves, class, detail) VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{run.ID, f.File, f.Key, f.Leaves, f.Class, f.Detail}})
		if err != nil {
			return fmt.Errorf("unable to record finding: %w", err)
		}
	}
	return nil
}

// Show prints most recent runs and the warning classes seen across them.
func Show(path string, limit int, w io.Writer) error {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return fmt.Errorf("unable to open audit database '%s': %w", path, err)
	}
	defer conn.Close()

	if limit <= 0 {
		limit = 10
	}

	fmt.Fprintf(w, "%-35s %-8s %6s %6s %7s %9s  %s\n", "STARTED", "FORMAT", "FILES", "KEYS", "VALUES", "WARNINGS", "SOURCE")
	err = sqlitex.Execute(conn,
		`SELECT started_at, format, files, keys, leaves, warnings, source
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				_, err := fmt.Fprintf(w, "%-35s %-8s %6d %6d %7d %9d  %s\n",
					stmt.ColumnText(0),
					stmt.ColumnText(1),
					stmt.ColumnInt64(2),
					stmt.ColumnInt64(3),
					stmt.ColumnInt64(4),
					stmt.ColumnInt64(5),
					stmt.ColumnText(6))
				return err
			},
		})
	if err != nil {
		return fmt.Errorf("unable to query runs: %w", err)
	}

	first := true
	err = sqlitex.Execute(conn,
		`SELECT class, COUNT(*) FROM findings WHERE class != '' GROUP BY class ORDER BY COUNT(*) DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				if first {
					fmt.Fprintf(w, "\n%-20s %s\n", "WARNING CLASS", "COUNT")
					first = false
				}
				_, err := fmt.Fprintf(w, "%-20s %d\n", stmt.ColumnText(0), stmt.ColumnInt64(1))
				return err
			},
		})
	if err != nil {
		return fmt.Errorf("unable to query findings: %w", err)
	}
	return nil
}
