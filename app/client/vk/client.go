package vk

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"quizbot/app/config"
	"quizbot/app/service/quiz"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/api/params"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"github.com/SevereCloud/vksdk/v2/object"
	"github.com/samber/do"
	"github.com/samber/oops"
)

var commands = map[string]quiz.EventKind{
	"/start":  quiz.EventSessionStart,
	"начать":  quiz.EventSessionStart,
	"/help":   quiz.EventHelp,
	"/cancel": quiz.EventSessionEnd,
}

type Client struct {
	vk      *api.VK
	groupID int
	buttons quiz.Buttons
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		vk:      api.NewVK(cfg.VK.Token),
		groupID: cfg.VK.GroupID,
		buttons: quiz.NewButtons(cfg.Quiz.Buttons),
	}, nil
}

func (c *Client) Name() quiz.Channel {
	return quiz.ChannelVK
}

func Decode(buttons quiz.Buttons, msg object.MessagesMessage) (quiz.Event, bool) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return quiz.Event{}, false
	}

	event := quiz.Event{
		Channel:   quiz.ChannelVK,
		UserID:    strconv.Itoa(msg.FromID),
		ReplyTo:   strconv.Itoa(msg.PeerID),
		MessageID: strconv.Itoa(msg.ID),
		Text:      text,
	}

	if kind, ok := commands[strings.ToLower(text)]; ok {
		event.Kind = kind
		event.Text = ""
		return event, true
	}

	event.Kind = buttons.Decode(text)
	return event, true
}

func (c *Client) Listen(ctx context.Context, emit func(quiz.Event)) error {
	lp, err := longpoll.NewLongPoll(c.vk, c.groupID)
	if err != nil {
		return oops.In("vk").With("group_id", c.groupID).Wrapf(err, "failed to start long poll")
	}

	lp.MessageNew(func(_ context.Context, obj events.MessageNewObject) {
		if event, ok := Decode(c.buttons, obj.Message); ok {
			emit(event)
		}
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- lp.Run()
	}()

	slog.Info("VK long poll started", "group_id", c.groupID)

	select {
	case <-ctx.Done():
		lp.Shutdown()
		<-errCh
		return nil
	case err = <-errCh:
		return oops.In("vk").Wrapf(err, "long poll stopped")
	}
}

func (c *Client) Send(_ context.Context, event quiz.Event, reply quiz.Reply) error {
	peerID, err := strconv.Atoi(event.ReplyTo)
	if err != nil {
		return oops.In("vk").With("peer_id", event.ReplyTo).Wrapf(err, "invalid peer id")
	}

	b := params.NewMessagesSendBuilder()
	b.PeerID(peerID)
	b.RandomID(0)
	b.Message(reply.Text)
	b.Keyboard(Keyboard(c.buttons))

	if _, err = c.vk.MessagesSend(b.Params); err != nil {
		return oops.In("vk").With("peer_id", peerID).Wrapf(err, "failed to send message")
	}

	return nil
}

// Keyboard is attached to every reply.
func Keyboard(buttons quiz.Buttons) *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(false)

	kb.AddRow()
	kb.AddTextButton(buttons.NewQuestion, "", object.ButtonGreen)
	kb.AddTextButton(buttons.GiveUp, "", object.ButtonRed)

	kb.AddRow()
	kb.AddTextButton(buttons.Score, "", object.ButtonBlue)

	return kb
}
