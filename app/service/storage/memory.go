package storage

import (
	"context"
	"math/rand/v2"
	"sync"
)

var _ Backend = (*Memory)(nil)

// Memory is a process-local backend. State is lost on restart.
type Memory struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	answers   map[string]string
	questions []string
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]Session),
		answers:  make(map[string]string),
	}
}

func (m *Memory) GetSession(_ context.Context, key string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[key]
	if !ok {
		return Session{}, notFound(key)
	}
	return session, nil
}

func (m *Memory) PutSession(_ context.Context, key string, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[key] = session
	return nil
}

func (m *Memory) GetAnswer(_ context.Context, question string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	answer, ok := m.answers[question]
	if !ok {
		return "", notFound(question)
	}
	return answer, nil
}

func (m *Memory) RandomQuestion(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.questions) == 0 {
		return "", emptyCorpus()
	}
	return m.questions[rand.IntN(len(m.questions))], nil
}

func (m *Memory) PutEntries(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		if _, exists := m.answers[entry.Question]; !exists {
			m.questions = append(m.questions, entry.Question)
		}
		m.answers[entry.Question] = entry.Answer
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
