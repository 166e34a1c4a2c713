package quiz

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"quizbot/app/config"
)

// Buttons decodes menu labels into event kinds. Anything else is an answer.
type Buttons struct {
	NewQuestion string
	GiveUp      string
	Score       string
}

func NewButtons(cfg config.Buttons) Buttons {
	return Buttons{
		NewQuestion: cfg.NewQuestion,
		GiveUp:      cfg.GiveUp,
		Score:       cfg.Score,
	}
}

func (b Buttons) Decode(text string) EventKind {
	switch strings.TrimSpace(text) {
	case b.NewQuestion:
		return EventNewQuestion
	case b.GiveUp:
		return EventGiveUp
	case b.Score:
		return EventScore
	default:
		return EventAnswer
	}
}

// Rows is the menu layout shared by keyboard-capable channels.
func (b Buttons) Rows() [][]string {
	return [][]string{{b.NewQuestion, b.GiveUp}, {b.Score}}
}

// render substitutes {key} placeholders in one pass. Substituted values are
// never expanded again.
func render(template string, values map[string]any) string {
	oldnew := make([]string, 0, len(values)*2)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		oldnew = append(oldnew, "{"+key+"}", fmt.Sprint(values[key]))
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}

type Texts struct {
	config.Texts
}

func (t Texts) greeting(user string) string {
	return render(t.Greeting, map[string]any{
		"user": user,
		"help": t.Help,
	})
}

func (t Texts) score(successes, giveUps int) string {
	return render(t.Score, map[string]any{
		"successes": successes,
		"give_ups":  giveUps,
		"failures":  giveUps,
	})
}

func (t Texts) giveUp(answer string) string {
	return render(t.GiveUp, map[string]any{
		"answer": answer,
		"next":   t.Next,
	})
}

func (t Texts) correct() string {
	return render(t.Correct, map[string]any{
		"next": t.Next,
	})
}
