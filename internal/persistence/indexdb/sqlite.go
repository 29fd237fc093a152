package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

var ErrSessionNotFound = errors.New("session not found")

// SQLiteIndex is a queryable read-model of finished and running sessions.
// Writes go through a single goroutine; recordings stay the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropStart atomic.Uint64
	dropEnd   atomic.Uint64
	writeFail atomic.Uint64
}

type reqKind int

const (
	reqStart reqKind = iota + 1
	reqEnd
)

type req struct {
	kind  reqKind
	start SessionStart
	end   SessionEnd
}

type SessionStart struct {
	ID            string
	Seed          uint64
	Width         int
	Height        int
	StartedAt     time.Time
	RecordingPath string
}

type SessionEnd struct {
	ID      string
	EndedAt time.Time
	Ticks   uint64
	Score   uint64
	Length  int
	Reason  string
	Cause   string
}

type Session struct {
	ID            string
	Seed          uint64
	Width         int
	Height        int
	StartedAt     time.Time
	EndedAt       time.Time // zero while running or after a crash
	Ticks         uint64
	Score         uint64
	Length        int
	Reason        string
	Cause         string
	RecordingPath string
}

func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

type Stats struct {
	DropStartTotal uint64
	DropEndTotal   uint64
	WriteFailTotal uint64
	QueueDepth     int
	QueueCapacity  int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 256),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			length INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			cause TEXT NOT NULL DEFAULT '',
			recording_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_score ON sessions(score);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains queued writes before closing the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) RecordSessionStart(st SessionStart) {
	if s == nil || s.closed.Load() || st.ID == "" {
		return
	}
	select {
	case s.ch <- req{kind: reqStart, start: st}:
	default:
		s.dropStart.Add(1)
	}
}

func (s *SQLiteIndex) RecordSessionEnd(e SessionEnd) {
	if s == nil || s.closed.Load() || e.ID == "" {
		return
	}
	select {
	case s.ch <- req{kind: reqEnd, end: e}:
	default:
		s.dropEnd.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		DropStartTotal: s.dropStart.Load(),
		DropEndTotal:   s.dropEnd.Load(),
		WriteFailTotal: s.writeFail.Load(),
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	for r := range s.ch {
		var err error
		switch r.kind {
		case reqStart:
			st := r.start
			_, err = s.db.ExecContext(ctx,
				`INSERT OR REPLACE INTO sessions(id,seed,width,height,started_at,recording_path) VALUES(?,?,?,?,?,?)`,
				st.ID,
				int64(st.Seed),
				st.Width,
				st.Height,
				formatTime(st.StartedAt),
				st.RecordingPath,
			)
		case reqEnd:
			e := r.end
			_, err = s.db.ExecContext(ctx,
				`UPDATE sessions SET ended_at=?,ticks=?,score=?,length=?,reason=?,cause=? WHERE id=?`,
				formatTime(e.EndedAt),
				int64(e.Ticks),
				int64(e.Score),
				e.Length,
				e.Reason,
				e.Cause,
				e.ID,
			)
		}
		if err != nil {
			s.writeFail.Add(1)
		}
	}
}

// ListSessions returns the most recently started sessions first.
func (s *SQLiteIndex) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionCols+` FROM sessions ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		ss, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id=?`, id)
	ss, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ss, err
}

// BestScore is 0 for an empty index.
func (s *SQLiteIndex) BestScore(ctx context.Context) (uint64, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(score) FROM sessions`).Scan(&best); err != nil {
		return 0, err
	}
	return uint64(best.Int64), nil
}

const sessionCols = `id,seed,width,height,started_at,ended_at,ticks,score,length,reason,cause,recording_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		ss      Session
		seed    int64
		started string
		ended   sql.NullString
		ticks   int64
		score   int64
	)
	if err := sc.Scan(&ss.ID, &seed, &ss.Width, &ss.Height, &started, &ended, &ticks, &score, &ss.Length, &ss.Reason, &ss.Cause, &ss.RecordingPath); err != nil {
		return Session{}, err
	}
	ss.Seed = uint64(seed)
	ss.Ticks = uint64(ticks)
	ss.Score = uint64(score)
	ss.StartedAt = parseTime(started)
	if ended.Valid {
		ss.EndedAt = parseTime(ended.String)
	}
	return ss, nil
}

// Fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
