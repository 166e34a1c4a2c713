package twitch_irc

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quizbot/app/client/twitch"
	"quizbot/app/config"
	"quizbot/app/service/quiz"

	irc "github.com/gempir/go-twitch-irc/v4"
	"github.com/samber/do"
)

const maxMessageLength = 500

var commands = map[string]quiz.EventKind{
	"start":  quiz.EventSessionStart,
	"help":   quiz.EventHelp,
	"quiz":   quiz.EventNewQuestion,
	"q":      quiz.EventNewQuestion,
	"giveup": quiz.EventGiveUp,
	"score":  quiz.EventScore,
	"answer": quiz.EventAnswer,
	"a":      quiz.EventAnswer,
	"cancel": quiz.EventSessionEnd,
}

// TokenSource yields the current oauth token of the bot account.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	cfg       *config.Config
	tokens    TokenSource
	ircClient *irc.Client
	prefix    string

	mutex     sync.RWMutex
	connected map[string]bool
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return newClient(cfg, do.MustInvoke[*twitch.Client](di)), nil
}

func newClient(cfg *config.Config, tokens TokenSource) *Client {
	client := &Client{
		cfg:       cfg,
		tokens:    tokens,
		prefix:    cfg.Twitch.CommandPrefix,
		connected: make(map[string]bool),
	}

	client.ircClient = irc.NewClient(cfg.Twitch.Username, "oauth:"+tokens.AccessToken())
	client.ircClient.OnConnect(func() {
		slog.Info("Connected to Twitch IRC")
	})
	client.ircClient.OnReconnectMessage(func(irc.ReconnectMessage) {
		slog.Info("Reconnecting to Twitch IRC")
	})

	return client
}

func (c *Client) Name() quiz.Channel {
	return quiz.ChannelTwitch
}

// Decode turns a chat line into an event. Lines without the command prefix
// or with an unknown command are ignored.
func (c *Client) Decode(channel, username, messageID, text string) (quiz.Event, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, c.prefix) {
		return quiz.Event{}, false
	}

	command, rest, _ := strings.Cut(strings.TrimPrefix(text, c.prefix), " ")
	kind, ok := commands[strings.ToLower(command)]
	if !ok {
		return quiz.Event{}, false
	}

	return quiz.Event{
		Channel:   quiz.ChannelTwitch,
		UserID:    username,
		UserName:  username,
		ReplyTo:   channel,
		MessageID: messageID,
		Kind:      kind,
		Text:      strings.TrimSpace(rest),
	}, true
}

func (c *Client) Listen(ctx context.Context, emit func(quiz.Event)) error {
	c.ircClient.OnPrivateMessage(func(message irc.PrivateMessage) {
		username := strings.ToLower(message.User.Name)
		channel := strings.ToLower(strings.TrimPrefix(message.Channel, "#"))

		if event, ok := c.Decode(channel, username, message.ID, message.Message); ok {
			emit(event)
		}
	})

	channel := strings.ToLower(c.cfg.Twitch.Channel)
	c.JoinChannel(channel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ircClient.Connect()
	}()

	select {
	case <-ctx.Done():
		c.LeaveChannel(channel)
		_ = c.ircClient.Disconnect()
		<-errCh
		return nil
	case err := <-errCh:
		c.LeaveChannel(channel)
		return err
	}
}

func (c *Client) Send(_ context.Context, event quiz.Event, reply quiz.Reply) error {
	c.ircClient.Say(event.ReplyTo, Format(event.UserName, reply.Text))
	return nil
}

// Format flattens a reply into a single chat line addressed to the user.
func Format(username, text string) string {
	line := "@" + username + " " + strings.Join(strings.Fields(text), " ")

	runes := []rune(line)
	if len(runes) > maxMessageLength {
		line = string(runes[:maxMessageLength-1]) + "…"
	}
	return line
}

func (c *Client) JoinChannel(channel string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.connected[channel] {
		return
	}

	c.ircClient.Join(channel)
	c.connected[channel] = true
}

func (c *Client) LeaveChannel(channel string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected[channel] {
		return
	}

	c.ircClient.Depart(channel)
	delete(c.connected, channel)
}

func (c *Client) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ircClient.SetIRCToken("oauth:" + c.tokens.AccessToken())
		}
	}
}
