package quiz

import "strings"

// Channel names the transport an event came from. Together with the user ID
// it forms the session key.
type Channel string

const (
	ChannelTelegram Channel = "tg"
	ChannelVK       Channel = "vk"
	ChannelTwitch   Channel = "twitch"
	ChannelHTTP     Channel = "http"
	ChannelMCP      Channel = "mcp"
)

type EventKind int

const (
	EventUnknown EventKind = iota
	EventSessionStart
	EventSessionEnd
	EventHelp
	EventNewQuestion
	EventGiveUp
	EventScore
	EventAnswer
)

var eventNames = map[EventKind]string{
	EventSessionStart: "session_start",
	EventSessionEnd:   "session_end",
	EventHelp:         "help",
	EventNewQuestion:  "new_question",
	EventGiveUp:       "give_up",
	EventScore:        "score",
	EventAnswer:       "answer_text",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseEventKind maps the wire name of an event kind back to it.
func ParseEventKind(name string) EventKind {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, known := range eventNames {
		if known == name {
			return kind
		}
	}
	return EventUnknown
}

// Event is one inbound user action, already decoded by a channel adapter.
type Event struct {
	Channel Channel
	UserID  string
	// UserName is used in the greeting only
	UserName string
	// ReplyTo is the transport address a reply goes to (chat, peer, channel)
	ReplyTo string
	// MessageID of the triggering message, if the transport has one
	MessageID string
	Kind      EventKind
	Text      string
}

type State string

const (
	StateChoosing       State = "choosing"
	StateAwaitingAnswer State = "awaiting_answer"
)

type Reply struct {
	Text      string
	NextState State
}
