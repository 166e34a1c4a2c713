// Package quiz runs one conversation turn: it reads the user's session,
// decides the action from the current state and writes the result back.
package quiz

import (
	"context"
	"errors"
	"log/slog"

	"quizbot/app/config"
	"quizbot/app/service/matcher"
	"quizbot/app/service/storage"

	"github.com/samber/do"
	"github.com/samber/oops"
)

type Service struct {
	sessions storage.SessionStore
	bank     storage.BankStore
	matcher  *matcher.Matcher
	texts    Texts
	prefix   string
}

func NewService(
	sessions storage.SessionStore,
	bank storage.BankStore,
	m *matcher.Matcher,
	quizCfg config.Quiz,
	prefix string,
) *Service {
	return &Service{
		sessions: sessions,
		bank:     bank,
		matcher:  m,
		texts:    Texts{quizCfg.Texts},
		prefix:   prefix,
	}
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	store := do.MustInvoke[*storage.Service](di)

	m, err := matcher.New(*cfg.Quiz.Threshold)
	if err != nil {
		return nil, err
	}

	slog.Info("Answer matcher ready", "threshold", m.Threshold())

	return NewService(store, store, m, cfg.Quiz, cfg.Storage.SessionPrefix), nil
}

func (s *Service) Texts() config.Texts {
	return s.texts.Texts
}

// SessionKey is <prefix><channel>_<user id>.
func (s *Service) SessionKey(channel Channel, userID string) string {
	return s.prefix + string(channel) + "_" + userID
}

func stateOf(session storage.Session) State {
	if session.LastAskedQuestion == "" {
		return StateChoosing
	}
	return StateAwaitingAnswer
}

// Handle processes one event. Wrong answers and missing questions produce
// regular replies; only store failures and stale questions return an error.
func (s *Service) Handle(ctx context.Context, event Event) (Reply, error) {
	key := s.SessionKey(event.Channel, event.UserID)
	errb := oops.In("quiz").With("session", key, "event", event.Kind.String())

	session, firstContact, err := s.loadSession(ctx, key)
	if err != nil {
		return Reply{}, errb.Wrapf(err, "failed to load session")
	}

	m := newMachine(key, stateOf(session))

	switch event.Kind {
	case EventSessionStart:
		return s.stay(m, s.texts.greeting(displayName(event))), nil

	case EventSessionEnd:
		return s.stay(m, s.texts.Farewell), nil

	case EventScore:
		return s.stay(m, s.texts.score(session.Success, session.GiveUp)), nil

	case EventNewQuestion:
		question, err := s.bank.RandomQuestion(ctx)
		if errors.Is(err, storage.ErrEmptyCorpus) {
			slog.Warn("Quiz bank is empty", "session", key)
			return s.stay(m, s.texts.EmptyCorpus), nil
		}
		if err != nil {
			return Reply{}, errb.Wrapf(err, "failed to draw question")
		}

		session.LastAskedQuestion = question
		if err = s.sessions.PutSession(ctx, key, session); err != nil {
			return Reply{}, errb.Wrapf(err, "failed to save session")
		}
		return s.fire(ctx, m, transitionAsk, question)

	case EventGiveUp:
		if !m.Can(transitionGiveUp) {
			return s.stay(m, s.texts.NoQuestion), nil
		}

		answer, err := s.bank.GetAnswer(ctx, session.LastAskedQuestion)
		if err != nil {
			return Reply{}, errb.With("question", session.LastAskedQuestion).Wrapf(err, "failed to get answer")
		}

		session.GiveUp++
		session.LastAskedQuestion = ""
		if err = s.sessions.PutSession(ctx, key, session); err != nil {
			return Reply{}, errb.Wrapf(err, "failed to save session")
		}
		return s.fire(ctx, m, transitionGiveUp, s.texts.giveUp(answer))

	case EventAnswer:
		if firstContact {
			return s.stay(m, s.texts.greeting(displayName(event))), nil
		}
		if !m.Can(transitionSolve) {
			return s.stay(m, s.texts.NoQuestion), nil
		}

		answer, err := s.bank.GetAnswer(ctx, session.LastAskedQuestion)
		if err != nil {
			return Reply{}, errb.With("question", session.LastAskedQuestion).Wrapf(err, "failed to get answer")
		}

		if !s.matcher.IsCorrect(event.Text, answer) {
			return s.fire(ctx, m, transitionMiss, s.texts.Incorrect)
		}

		session.Success++
		session.LastAskedQuestion = ""
		if err = s.sessions.PutSession(ctx, key, session); err != nil {
			return Reply{}, errb.Wrapf(err, "failed to save session")
		}
		return s.fire(ctx, m, transitionSolve, s.texts.correct())

	default:
		return s.stay(m, s.texts.Help), nil
	}
}

// loadSession returns the stored session, creating a zero record on first
// contact.
func (s *Service) loadSession(ctx context.Context, key string) (storage.Session, bool, error) {
	session, err := s.sessions.GetSession(ctx, key)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Session{}, false, err
	}

	session = storage.Session{}
	if err = s.sessions.PutSession(ctx, key, session); err != nil {
		return storage.Session{}, false, err
	}

	slog.Debug("New session created", "session", key)

	return session, true, nil
}

func (s *Service) stay(m *machine, text string) Reply {
	return Reply{Text: text, NextState: m.State()}
}

func (s *Service) fire(ctx context.Context, m *machine, transition, text string) (Reply, error) {
	state, err := m.Fire(ctx, transition)
	if err != nil {
		return Reply{}, oops.In("quiz").With("transition", transition).Wrap(err)
	}
	return Reply{Text: text, NextState: state}, nil
}

func displayName(event Event) string {
	if event.UserName != "" {
		return event.UserName
	}
	return event.UserID
}
