package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"quizbot/app/config"

	"github.com/alicebob/miniredis/v2"
)

type backendFactory func(t *testing.T) Backend

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(t *testing.T) Backend {
			return NewMemory()
		},
		"redis": func(t *testing.T) Backend {
			server := miniredis.RunT(t)
			backend := NewRedis(config.Redis{
				Addr:    server.Addr(),
				TasksDB: 1,
				UsersDB: 2,
				Timeout: time.Second,
			})
			t.Cleanup(func() { _ = backend.Close() })
			return backend
		},
		"sqlite": func(t *testing.T) Backend {
			dsn := "file:" + filepath.Join(t.TempDir(), "quiz.db") + "?_pragma=busy_timeout(5000)"
			backend, err := OpenSQL(context.Background(), config.SQL{Driver: "sqlite", DSN: dsn})
			if err != nil {
				t.Fatalf("OpenSQL() error = %v", err)
			}
			t.Cleanup(func() { _ = backend.Close() })
			return backend
		},
	}
}

func TestBackend_Sessions(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := factory(t)

			if _, err := backend.GetSession(ctx, "user_tg_1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("GetSession() error = %v, want ErrNotFound", err)
			}

			want := Session{LastAskedQuestion: "Q?", Success: 2, GiveUp: 1}
			if err := backend.PutSession(ctx, "user_tg_1", want); err != nil {
				t.Fatalf("PutSession() error = %v", err)
			}

			got, err := backend.GetSession(ctx, "user_tg_1")
			if err != nil {
				t.Fatalf("GetSession() error = %v", err)
			}
			if got != want {
				t.Fatalf("got = %+v, want %+v", got, want)
			}

			want.LastAskedQuestion = ""
			want.Success = 3
			if err = backend.PutSession(ctx, "user_tg_1", want); err != nil {
				t.Fatalf("PutSession() overwrite error = %v", err)
			}
			if got, _ = backend.GetSession(ctx, "user_tg_1"); got != want {
				t.Fatalf("after overwrite got = %+v, want %+v", got, want)
			}
		})
	}
}

func TestBackend_Bank(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := factory(t)

			if _, err := backend.RandomQuestion(ctx); !errors.Is(err, ErrEmptyCorpus) {
				t.Fatalf("RandomQuestion() error = %v, want ErrEmptyCorpus", err)
			}
			if _, err := backend.GetAnswer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("GetAnswer() error = %v, want ErrNotFound", err)
			}

			entries := []Entry{
				{Question: "Столица Франции?", Answer: "Париж (Франция)"},
				{Question: "2+2?", Answer: "4"},
			}
			if err := backend.PutEntries(ctx, entries); err != nil {
				t.Fatalf("PutEntries() error = %v", err)
			}

			answer, err := backend.GetAnswer(ctx, "Столица Франции?")
			if err != nil {
				t.Fatalf("GetAnswer() error = %v", err)
			}
			if answer != "Париж (Франция)" {
				t.Fatalf("answer = %q, want commentary kept verbatim", answer)
			}

			seen := map[string]bool{}
			for range 200 {
				question, err := backend.RandomQuestion(ctx)
				if err != nil {
					t.Fatalf("RandomQuestion() error = %v", err)
				}
				seen[question] = true
			}
			if len(seen) != len(entries) {
				t.Fatalf("random draws covered %d questions, want %d", len(seen), len(entries))
			}
		})
	}
}

func TestMemory_RandomQuestionIsUniform(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemory()

	const n = 5
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Question: fmt.Sprintf("q%d", i), Answer: "a"}
	}
	if err := backend.PutEntries(ctx, entries); err != nil {
		t.Fatalf("PutEntries() error = %v", err)
	}

	const draws = 10000
	counts := map[string]int{}
	for range draws {
		question, _ := backend.RandomQuestion(ctx)
		counts[question]++
	}

	expected := float64(draws) / n
	for question, count := range counts {
		if float64(count) < expected*0.8 || float64(count) > expected*1.2 {
			t.Fatalf("%s drawn %d times, expected about %.0f", question, count, expected)
		}
	}
}

func TestRedis_UnavailableServer(t *testing.T) {
	t.Parallel()

	server := miniredis.NewMiniRedis()
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	addr := server.Addr()
	server.Close()

	backend := NewRedis(config.Redis{Addr: addr, TasksDB: 1, UsersDB: 2, Timeout: 200 * time.Millisecond})
	defer backend.Close()

	_, err := backend.GetSession(context.Background(), "user_vk_1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("GetSession() error = %v, want ErrUnavailable", err)
	}
	if err = backend.PutEntries(context.Background(), []Entry{{Question: "q", Answer: "a"}}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("PutEntries() error = %v, want ErrUnavailable", err)
	}
}

func TestRedis_SessionEncoding(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	backend := NewRedis(config.Redis{Addr: server.Addr(), TasksDB: 1, UsersDB: 2})
	defer backend.Close()

	server.Select(2)
	server.Set("user_tg_7", `{"last_asked_question": null, "success": 4, "give_up": 1}`)

	got, err := backend.GetSession(context.Background(), "user_tg_7")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if want := (Session{Success: 4, GiveUp: 1}); got != want {
		t.Fatalf("got = %+v, want %+v", got, want)
	}
}
