package twitch_irc

import (
	"strings"
	"testing"
	"unicode/utf8"

	"quizbot/app/config"
	"quizbot/app/service/quiz"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func testClient(t *testing.T) *Client {
	t.Helper()

	cfg, err := config.Parse([]byte("storage:\n  driver: memory\ntwitch:\n  username: quizbot\n  channel: room\n"))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}
	return newClient(cfg, staticToken("token"))
}

func TestClient_Decode(t *testing.T) {
	t.Parallel()

	c := testClient(t)

	tests := []struct {
		text     string
		ok       bool
		kind     quiz.EventKind
		wantText string
	}{
		{"!quiz", true, quiz.EventNewQuestion, ""},
		{"!A  Пушкин ", true, quiz.EventAnswer, "Пушкин"},
		{"!answer Lev Tolstoy", true, quiz.EventAnswer, "Lev Tolstoy"},
		{"!giveup", true, quiz.EventGiveUp, ""},
		{"!score", true, quiz.EventScore, ""},
		{"!dance", false, 0, ""},
		{"just chatting", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ev, ok := c.Decode("room", "viewer", "id1", tt.text)
			if ok != tt.ok {
				t.Fatalf("Decode() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.kind || ev.Text != tt.wantText {
				t.Fatalf("Decode() = %+v, want kind %v text %q", ev, tt.kind, tt.wantText)
			}
			if ev.UserID != "viewer" || ev.ReplyTo != "room" || ev.Channel != quiz.ChannelTwitch {
				t.Fatalf("Decode() addressing = %+v", ev)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := Format("ann", "Правильный ответ:\nПариж\n\nдальше"); got != "@ann Правильный ответ: Париж дальше" {
		t.Fatalf("Format() = %q", got)
	}

	long := Format("ann", strings.Repeat("я", 1000))
	if n := utf8.RuneCountInString(long); n != maxMessageLength {
		t.Fatalf("Format() length = %d, want %d", n, maxMessageLength)
	}
}

func TestClient_JoinLeaveBookkeeping(t *testing.T) {
	t.Parallel()

	c := testClient(t)

	c.JoinChannel("room")
	c.JoinChannel("room")
	if !c.connected["room"] || len(c.connected) != 1 {
		t.Fatalf("connected = %v, want only room", c.connected)
	}

	c.LeaveChannel("room")
	if c.connected["room"] {
		t.Fatal("room still marked as joined after LeaveChannel")
	}

	// a second leave is a no-op
	c.LeaveChannel("room")
	if len(c.connected) != 0 {
		t.Fatalf("connected = %v, want empty", c.connected)
	}
}
