package telegram

import (
	"context"
	"log/slog"
	"strconv"

	"quizbot/app/config"
	"quizbot/app/service/quiz"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const pollTimeout = 60

var commands = map[string]quiz.EventKind{
	"start":  quiz.EventSessionStart,
	"help":   quiz.EventHelp,
	"cancel": quiz.EventSessionEnd,
}

type Client struct {
	bot     *tgbotapi.BotAPI
	buttons quiz.Buttons
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, oops.In("telegram").Wrapf(err, "failed to create bot")
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &Client{
		bot:     bot,
		buttons: quiz.NewButtons(cfg.Quiz.Buttons),
	}, nil
}

func (c *Client) Name() quiz.Channel {
	return quiz.ChannelTelegram
}

// Decode maps a message to an event: commands first, then menu labels,
// then free text as an answer.
func Decode(buttons quiz.Buttons, msg *tgbotapi.Message) (quiz.Event, bool) {
	if msg == nil || msg.From == nil {
		return quiz.Event{}, false
	}

	event := quiz.Event{
		Channel:   quiz.ChannelTelegram,
		UserID:    strconv.FormatInt(msg.From.ID, 10),
		UserName:  msg.From.FirstName,
		ReplyTo:   strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: strconv.Itoa(msg.MessageID),
		Text:      msg.Text,
	}

	if msg.IsCommand() {
		kind, ok := commands[msg.Command()]
		if !ok {
			kind = quiz.EventHelp
		}
		event.Kind = kind
		event.Text = msg.CommandArguments()
		return event, true
	}

	if msg.Text == "" {
		return quiz.Event{}, false
	}

	event.Kind = buttons.Decode(msg.Text)
	return event, true
}

func (c *Client) Listen(ctx context.Context, emit func(quiz.Event)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := c.bot.GetUpdatesChan(u)
	defer c.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return oops.In("telegram").Errorf("updates channel closed")
			}
			if event, ok := Decode(c.buttons, update.Message); ok {
				emit(event)
			}
		}
	}
}

func (c *Client) Send(_ context.Context, event quiz.Event, reply quiz.Reply) error {
	chatID, err := strconv.ParseInt(event.ReplyTo, 10, 64)
	if err != nil {
		return oops.In("telegram").With("chat_id", event.ReplyTo).Wrapf(err, "invalid chat id")
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ReplyMarkup = Markup(c.buttons, event.Kind)

	if _, err = c.bot.Send(msg); err != nil {
		return oops.In("telegram").With("chat_id", chatID).Wrapf(err, "failed to send message")
	}

	return nil
}

// Markup shows the menu on every reply except the farewell, which hides it.
func Markup(buttons quiz.Buttons, kind quiz.EventKind) any {
	if kind == quiz.EventSessionEnd {
		return tgbotapi.NewRemoveKeyboard(true)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(buttons.Rows()))
	for _, labels := range buttons.Rows() {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}
