package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quizbot/app/config"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/samber/oops"
	_ "modernc.org/sqlite" // driver: sqlite
)

var _ Backend = (*SQL)(nil)

const defaultSQLiteDSN = "file:quizbot.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Placeholders are written as $N, both sqlite and postgres accept them.
const schema = `
CREATE TABLE IF NOT EXISTS quiz_entries (
  question TEXT PRIMARY KEY,
  answer TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  session_key TEXT PRIMARY KEY,
  last_asked_question TEXT NOT NULL DEFAULT '',
  success INTEGER NOT NULL DEFAULT 0,
  give_up INTEGER NOT NULL DEFAULT 0
);
`

// SQL stores the bank and sessions in two tables of a sqlite or postgres
// database.
type SQL struct {
	db *sql.DB
}

func OpenSQL(ctx context.Context, cfg config.SQL) (*SQL, error) {
	var driverName string
	dsn := cfg.DSN

	switch cfg.Driver {
	case "sqlite":
		driverName = "sqlite"
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		if path := sqlitePath(dsn); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, oops.In("storage").Wrapf(err, "create database directory")
			}
		}
	case "postgres":
		driverName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizbot?sslmode=disable"
		}
	default:
		return nil, oops.In("storage").Errorf("unsupported sql driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, oops.In("storage").Wrapf(err, "open database")
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable(err, "ping")
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, oops.In("storage").Wrapf(err, "initialize schema")
		}
	}

	return &SQL{db: db}, nil
}

func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

func (s *SQL) GetSession(ctx context.Context, key string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT last_asked_question, success, give_up FROM sessions WHERE session_key=$1`, key)

	var session Session
	err := row.Scan(&session.LastAskedQuestion, &session.Success, &session.GiveUp)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, notFound(key)
	}
	if err != nil {
		return Session{}, unavailable(err, "get_session")
	}

	return session, nil
}

func (s *SQL) PutSession(ctx context.Context, key string, session Session) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions (session_key, last_asked_question, success, give_up)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_key) DO UPDATE SET
		  last_asked_question=EXCLUDED.last_asked_question,
		  success=EXCLUDED.success,
		  give_up=EXCLUDED.give_up`,
		key, session.LastAskedQuestion, session.Success, session.GiveUp)
	if err != nil {
		return unavailable(err, "put_session")
	}
	return nil
}

func (s *SQL) GetAnswer(ctx context.Context, question string) (string, error) {
	var answer string
	err := s.db.QueryRowContext(ctx, `SELECT answer FROM quiz_entries WHERE question=$1`, question).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(question)
	}
	if err != nil {
		return "", unavailable(err, "get_answer")
	}
	return answer, nil
}

func (s *SQL) RandomQuestion(ctx context.Context) (string, error) {
	var question string
	err := s.db.QueryRowContext(ctx, `SELECT question FROM quiz_entries ORDER BY RANDOM() LIMIT 1`).Scan(&question)
	if errors.Is(err, sql.ErrNoRows) {
		return "", emptyCorpus()
	}
	if err != nil {
		return "", unavailable(err, "random_question")
	}
	return question, nil
}

func (s *SQL) PutEntries(ctx context.Context, entries []Entry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(err, "put_entries")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO quiz_entries (question, answer) VALUES ($1, $2)
		ON CONFLICT (question) DO UPDATE SET answer=EXCLUDED.answer`)
	if err != nil {
		return unavailable(err, "put_entries")
	}
	defer stmt.Close()

	for i, entry := range entries {
		if _, err = stmt.ExecContext(ctx, entry.Question, entry.Answer); err != nil {
			return unavailable(fmt.Errorf("entry %d: %w", i, err), "put_entries")
		}
	}

	if err = tx.Commit(); err != nil {
		return unavailable(err, "put_entries")
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err, "ping")
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
