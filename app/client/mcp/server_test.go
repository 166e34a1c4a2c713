package mcp

import (
	"context"
	"testing"

	"quizbot/app/service/quiz"

	"github.com/mark3labs/mcp-go/mcp"
)

type recorder struct {
	events []quiz.Event
}

func (r *recorder) Process(_ context.Context, event quiz.Event) quiz.Reply {
	r.events = append(r.events, event)
	return quiz.Reply{Text: "ok:" + event.Text}
}

func call(t *testing.T, s *Server, kind quiz.EventKind, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := s.handler(kind)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler() error = %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if len(result.Content) != 1 {
		t.Fatalf("content = %d items, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", result.Content[0])
	}
	return text.Text
}

func TestServer_Answer(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := NewServer(rec)

	result := call(t, s, quiz.EventAnswer, map[string]any{"user_id": "p1", "text": "Пушкин"})
	if result.IsError {
		t.Fatal("unexpected tool error")
	}
	if got := resultText(t, result); got != "ok:Пушкин" {
		t.Fatalf("text = %q", got)
	}
	if ev := rec.events[0]; ev.Channel != quiz.ChannelMCP || ev.UserID != "p1" || ev.Kind != quiz.EventAnswer {
		t.Fatalf("event = %+v", ev)
	}
}

func TestServer_MissingArguments(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := NewServer(rec)

	if result := call(t, s, quiz.EventScore, map[string]any{}); !result.IsError {
		t.Fatal("missing user_id accepted")
	}
	if result := call(t, s, quiz.EventAnswer, map[string]any{"user_id": "p1"}); !result.IsError {
		t.Fatal("missing text accepted")
	}
	if len(rec.events) != 0 {
		t.Fatalf("events = %d, want 0", len(rec.events))
	}
}
