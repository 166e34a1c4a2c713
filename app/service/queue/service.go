package queue

import (
	"log/slog"
	"sync"

	"quizbot/app/config"
	"quizbot/app/service/quiz"

	"github.com/cespare/xxhash/v2"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service spreads inbound events over a fixed set of shards. All events of
// one user land on the same shard, so a shard consumer sees them in order.
type Service struct {
	shards []chan quiz.Event
	mu     sync.RWMutex
	closed bool
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewService(cfg.Engine.Shards, cfg.Engine.QueueSize), nil
}

func NewService(shards, size int) *Service {
	s := &Service{shards: make([]chan quiz.Event, max(shards, 1))}
	for i := range s.shards {
		s.shards[i] = make(chan quiz.Event, max(size, 1))
	}
	return s
}

// ShardOf returns the shard index an event is routed to.
func (s *Service) ShardOf(event quiz.Event) int {
	h := xxhash.New()
	_, _ = h.WriteString(string(event.Channel))
	_, _ = h.WriteString("_")
	_, _ = h.WriteString(event.UserID)
	return int(h.Sum64() % uint64(len(s.shards)))
}

// Add enqueues the event without blocking. It reports false when the shard
// is full or the queue is shut down.
func (s *Service) Add(event quiz.Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.shards[s.ShardOf(event)] <- event:
		return true
	default:
		slog.Warn("Event queue is full",
			"channel", event.Channel,
			"user_id", event.UserID,
			"kind", event.Kind.String())
		return false
	}
}

func (s *Service) Shards() []<-chan quiz.Event {
	result := make([]<-chan quiz.Event, len(s.shards))
	for i, shard := range s.shards {
		result[i] = shard
	}
	return result
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, shard := range s.shards {
		close(shard)
	}

	return nil
}
