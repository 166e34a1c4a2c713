package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quizbot/app/config"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

var _ Backend = (*Redis)(nil)

// Redis keeps the bank and the sessions in two logical databases of the same
// server. Bank keys are full question texts, session values are JSON.
type Redis struct {
	tasks   *redis.Client
	users   *redis.Client
	timeout time.Duration
}

func NewRedis(cfg config.Redis) *Redis {
	newClient := func(db int) *redis.Client {
		return redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           db,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		})
	}

	return &Redis{
		tasks:   newClient(cfg.TasksDB),
		users:   newClient(cfg.UsersDB),
		timeout: cfg.Timeout,
	}
}

func (r *Redis) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Redis) GetSession(ctx context.Context, key string) (Session, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := r.users.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, notFound(key)
	}
	if err != nil {
		return Session{}, unavailable(err, "get_session")
	}

	var session Session
	if err = json.Unmarshal(raw, &session); err != nil {
		return Session{}, oops.
			In("storage").
			With("key", key).
			Wrapf(err, "failed to decode session")
	}

	return session, nil
}

func (r *Redis) PutSession(ctx context.Context, key string, session Session) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := json.Marshal(session)
	if err != nil {
		return oops.In("storage").Wrapf(err, "failed to encode session")
	}

	if err = r.users.Set(ctx, key, raw, 0).Err(); err != nil {
		return unavailable(err, "put_session")
	}

	return nil
}

func (r *Redis) GetAnswer(ctx context.Context, question string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	answer, err := r.tasks.Get(ctx, question).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(question)
	}
	if err != nil {
		return "", unavailable(err, "get_answer")
	}

	return answer, nil
}

func (r *Redis) RandomQuestion(ctx context.Context) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	question, err := r.tasks.RandomKey(ctx).Result()
	if errors.Is(err, redis.Nil) {
		return "", emptyCorpus()
	}
	if err != nil {
		return "", unavailable(err, "random_question")
	}

	return question, nil
}

// PutEntries sends all SETs inside one MULTI/EXEC block.
func (r *Redis) PutEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.tasks.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, entry := range entries {
			pipe.Set(ctx, entry.Question, entry.Answer, 0)
		}
		return nil
	})
	if err != nil {
		return unavailable(err, "put_entries")
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.tasks.Ping(ctx).Err(); err != nil {
		return unavailable(err, "ping")
	}
	if err := r.users.Ping(ctx).Err(); err != nil {
		return unavailable(err, "ping")
	}
	return nil
}

func (r *Redis) Close() error {
	return errors.Join(r.tasks.Close(), r.users.Close())
}
