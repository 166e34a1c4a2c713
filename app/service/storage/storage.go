// Package storage holds the persisted quiz state: per-user sessions and the
// question -> answer bank.
package storage

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

var (
	// ErrNotFound is returned for a missing session or question key.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCorpus is returned when the bank has no questions to draw from.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrUnavailable marks transport or backend failures. The caller may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// Session is a user's progress record. An empty LastAskedQuestion means no
// question is outstanding.
type Session struct {
	LastAskedQuestion string `json:"last_asked_question"`
	Success           int    `json:"success"`
	GiveUp            int    `json:"give_up"`
}

// Entry is one question of the bank. The answer is stored verbatim,
// commentary included.
type Entry struct {
	Question string
	Answer   string
}

type SessionStore interface {
	GetSession(ctx context.Context, key string) (Session, error)
	PutSession(ctx context.Context, key string, session Session) error
}

type BankStore interface {
	GetAnswer(ctx context.Context, question string) (string, error)
	// RandomQuestion draws a question uniformly at random.
	RandomQuestion(ctx context.Context) (string, error)
	// PutEntries writes all entries or none of them.
	PutEntries(ctx context.Context, entries []Entry) error
}

type Backend interface {
	SessionStore
	BankStore
	Ping(ctx context.Context) error
	Close() error
}

func unavailable(err error, op string) error {
	return oops.
		In("storage").
		Code("storage_unavailable").
		With("op", op).
		Wrap(errors.Join(ErrUnavailable, err))
}

func notFound(key string) error {
	return oops.
		In("storage").
		Code("not_found").
		With("key", key).
		Wrap(ErrNotFound)
}

func emptyCorpus() error {
	return oops.
		In("storage").
		Code("empty_corpus").
		Wrap(ErrEmptyCorpus)
}
