// Package transcript records console log lines in SQLite so past sessions
// can be replayed with `zcon history`.
package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logstore"
	"github.com/daviddao/zcon/internal/render"
)

// Record is one stored log line.
type Record struct {
	ID        string
	Session   string
	At        time.Time
	Direction render.Direction
	Entry     render.Entry
}

// Transcript is a SQLite-backed line archive.
type Transcript struct {
	db *sql.DB
}

// Open opens (or creates) the transcript database at path.
func Open(path string) (*Transcript, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create transcript dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	// WAL mode so `zcon history` can read while a console records.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate transcript db: %w", err)
	}
	return &Transcript{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lines (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			id        TEXT NOT NULL UNIQUE,
			session   TEXT NOT NULL,
			at        TEXT NOT NULL,
			direction INTEGER NOT NULL,
			kind      INTEGER NOT NULL,
			text      TEXT NOT NULL,
			segments  TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (t *Transcript) Close() error {
	return t.db.Close()
}

// Append stores one line.
func (t *Transcript) Append(ctx context.Context, session string, line logstore.Line) error {
	segs, err := json.Marshal(line.Entry.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	_, err = t.db.ExecContext(ctx,
		"INSERT INTO lines (id, session, at, direction, kind, text, segments) VALUES (?, ?, ?, ?, ?, ?, ?)",
		line.ID.String(), session, line.At.UTC().Format(time.RFC3339Nano),
		int(line.Entry.Direction), int(line.Entry.Kind), line.Entry.Text(), string(segs),
	)
	if err != nil {
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// List returns up to limit of the most recent lines, oldest first.
// A limit of zero or less returns every line.
func (t *Transcript) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, session, at, direction, kind, segments FROM (
			SELECT seq, id, session, at, direction, kind, segments
			FROM lines ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			at        string
			direction int
			kind      int
			segs      string
		)
		if err := rows.Scan(&rec.ID, &rec.Session, &at, &direction, &kind, &segs); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		rec.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse line time %q: %w", at, err)
		}
		rec.Direction = render.Direction(direction)
		rec.Entry = render.Entry{Kind: frame.Kind(kind), Direction: rec.Direction}
		if err := json.Unmarshal([]byte(segs), &rec.Entry.Segments); err != nil {
			return nil, fmt.Errorf("decode segments of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Recorder is a logstore.Sink that appends every line for one session.
type Recorder struct {
	t       *Transcript
	session string
	timeout time.Duration
}

// Recorder returns a sink recording lines under session.
func (t *Transcript) Recorder(session string) *Recorder {
	return &Recorder{t: t, session: session, timeout: 2 * time.Second}
}

// Observe implements logstore.Sink.
func (r *Recorder) Observe(line logstore.Line) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.t.Append(ctx, r.session, line)
}
