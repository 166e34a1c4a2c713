package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quizbot/app/config"
	"quizbot/app/service/engine"
	"quizbot/app/service/quiz"
	"quizbot/app/service/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const shutdownTimeout = 5 * time.Second

// Processor runs one conversation turn synchronously.
type Processor interface {
	Process(ctx context.Context, event quiz.Event) quiz.Reply
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type EventRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name"`
	Kind     string `json:"kind" validate:"required"`
	Text     string `json:"text"`
}

type EventResponse struct {
	Text      string     `json:"text"`
	NextState quiz.State `json:"next_state,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	addr      string
	app       *fiber.App
	processor Processor
	pinger    Pinger
	validate  *validator.Validate
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewServer(
		cfg.HTTP.Addr,
		do.MustInvoke[*engine.Service](di),
		do.MustInvoke[*storage.Service](di),
	), nil
}

func NewServer(addr string, processor Processor, pinger Pinger) *Server {
	s := &Server{
		addr:      addr,
		processor: processor,
		pinger:    pinger,
		validate:  validator.New(),
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			AppName:               "quizbot",
		}),
	}

	s.app.Get("/health", s.handleHealth)
	api := s.app.Group("/api/v1")
	api.Post("/events", s.handleEvent)

	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.pinger.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleEvent(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	kind := quiz.ParseEventKind(req.Kind)
	if kind == quiz.EventUnknown {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "unknown event kind: " + req.Kind})
	}

	reply := s.processor.Process(c.UserContext(), quiz.Event{
		Channel:  quiz.ChannelHTTP,
		UserID:   req.UserID,
		UserName: req.UserName,
		Kind:     kind,
		Text:     req.Text,
	})

	return c.JSON(EventResponse{Text: reply.Text, NextState: reply.NextState})
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	slog.Info("HTTP API listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return oops.In("httpapi").Wrapf(err, "shutdown failed")
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return oops.In("httpapi").With("addr", s.addr).Wrapf(err, "listen failed")
		}
		return nil
	}
}
