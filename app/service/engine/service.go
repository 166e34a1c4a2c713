package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quizbot/app/config"
	"quizbot/app/service/queue"
	"quizbot/app/service/quiz"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// Sender delivers a reply back over the transport the event came from.
type Sender interface {
	Send(ctx context.Context, event quiz.Event, reply quiz.Reply) error
}

// Channel is a transport adapter. Listen blocks, passing decoded events to
// emit until ctx is done or the transport fails.
type Channel interface {
	Sender
	Name() quiz.Channel
	Listen(ctx context.Context, emit func(quiz.Event)) error
}

type Service struct {
	cfg      *config.Config
	quizSvc  *quiz.Service
	queueSvc *queue.Service

	mu       sync.RWMutex
	channels map[quiz.Channel]Channel
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*quiz.Service](di),
		do.MustInvoke[*queue.Service](di),
	), nil
}

func NewService(cfg *config.Config, quizSvc *quiz.Service, queueSvc *queue.Service) *Service {
	return &Service{
		cfg:      cfg,
		quizSvc:  quizSvc,
		queueSvc: queueSvc,
		channels: make(map[quiz.Channel]Channel),
	}
}

func (s *Service) Register(channel Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels[channel.Name()] = channel
}

func (s *Service) channel(name quiz.Channel) (Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.channels[name]
	return ch, ok
}

// Run starts one worker per queue shard and one supervised listener per
// registered channel. It returns once ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.mu.RLock()
	channels := pie.Values(s.channels)
	s.mu.RUnlock()

	if len(channels) == 0 {
		return oops.In("engine").Errorf("no channels enabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	for i, shard := range s.queueSvc.Shards() {
		g.Go(func() error {
			s.work(gctx, i, shard)
			return nil
		})
	}

	for _, ch := range channels {
		g.Go(func() error {
			Supervise(gctx, string(ch.Name()), s.cfg.Engine.RetryTimeout, func(ctx context.Context) error {
				return ch.Listen(ctx, s.emit)
			})
			return nil
		})
	}

	slog.Info("Engine started",
		"channels", pie.Map(channels, func(c Channel) quiz.Channel { return c.Name() }),
		"shards", len(s.queueSvc.Shards()))

	return g.Wait()
}

func (s *Service) emit(event quiz.Event) {
	if !s.queueSvc.Add(event) {
		slog.Warn("Dropped event", "channel", event.Channel, "user_id", event.UserID)
	}
}

func (s *Service) work(ctx context.Context, shard int, events <-chan quiz.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			start := time.Now()
			reply := s.Process(ctx, event)

			if err := s.deliver(ctx, event, reply); err != nil {
				slog.Warn("Failed to send reply", "channel", event.Channel, "user_id", event.UserID, "error", err)
			}

			slog.Debug("Processed event",
				"shard", shard,
				"channel", event.Channel,
				"user_id", event.UserID,
				"kind", event.Kind.String(),
				"state", reply.NextState,
				"duration", time.Since(start))
		}
	}
}

// Process runs one turn. Engine errors never escape: they are logged and
// rendered as a generic apology with an unknown next state.
func (s *Service) Process(ctx context.Context, event quiz.Event) quiz.Reply {
	reply, err := s.quizSvc.Handle(ctx, event)
	if err != nil {
		slog.Error("Failed to handle event",
			"channel", event.Channel,
			"user_id", event.UserID,
			"kind", event.Kind.String(),
			"error", err)
		return quiz.Reply{Text: s.quizSvc.Texts().Unavailable}
	}
	return reply
}

func (s *Service) deliver(ctx context.Context, event quiz.Event, reply quiz.Reply) error {
	ch, ok := s.channel(event.Channel)
	if !ok {
		return oops.In("engine").With("channel", event.Channel).Errorf("no sender for channel")
	}
	return ch.Send(ctx, event, reply)
}

// Supervise keeps fn running until ctx is done, pausing for retry after
// every failure.
func Supervise(ctx context.Context, name string, retry time.Duration, fn func(ctx context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := fn(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.Error("Channel loop failed", "channel", name, "error", err, "alert", true)
		} else {
			slog.Warn("Channel loop stopped", "channel", name)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}
