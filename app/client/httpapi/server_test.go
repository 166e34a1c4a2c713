package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizbot/app/service/quiz"
)

type echoProcessor struct {
	last quiz.Event
}

func (p *echoProcessor) Process(_ context.Context, event quiz.Event) quiz.Reply {
	p.last = event
	return quiz.Reply{Text: "got " + event.Kind.String(), NextState: quiz.StateChoosing}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func okPing(context.Context) error { return nil }

func TestServer_Event(t *testing.T) {
	t.Parallel()

	processor := &echoProcessor{}
	srv := NewServer(":0", processor, pingFunc(okPing))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events",
		strings.NewReader(`{"user_id":"u1","kind":"answer_text","text":"Париж"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body EventResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if body.Text != "got answer_text" || body.NextState != quiz.StateChoosing {
		t.Fatalf("body = %+v", body)
	}
	if processor.last.Channel != quiz.ChannelHTTP || processor.last.Text != "Париж" {
		t.Fatalf("event = %+v", processor.last)
	}
}

func TestServer_EventValidation(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", &echoProcessor{}, pingFunc(okPing))

	tests := []struct {
		name string
		body string
	}{
		{"broken json", `{`},
		{"missing user", `{"kind":"score"}`},
		{"unknown kind", `{"user_id":"u1","kind":"dance"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := srv.App().Test(req)
			if err != nil {
				t.Fatalf("Test() error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ping pingFunc
		want int
	}{
		{"ok", okPing, http.StatusOK},
		{"down", func(context.Context) error { return errors.New("down") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(":0", &echoProcessor{}, tt.ping)

			resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			if err != nil {
				t.Fatalf("Test() error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
