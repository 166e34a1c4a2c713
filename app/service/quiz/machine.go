package quiz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/looplab/fsm"
)

// Transitions that move or keep the conversation state. Score, help, start
// and end leave the state untouched and are not part of the table.
const (
	transitionAsk    = "ask"
	transitionGiveUp = "give_up"
	transitionSolve  = "solve"
	transitionMiss   = "miss"
)

var transitions = fsm.Events{
	{Name: transitionAsk, Src: []string{string(StateChoosing), string(StateAwaitingAnswer)}, Dst: string(StateAwaitingAnswer)},
	{Name: transitionGiveUp, Src: []string{string(StateAwaitingAnswer)}, Dst: string(StateChoosing)},
	{Name: transitionSolve, Src: []string{string(StateAwaitingAnswer)}, Dst: string(StateChoosing)},
	{Name: transitionMiss, Src: []string{string(StateAwaitingAnswer)}, Dst: string(StateAwaitingAnswer)},
}

// machine is rebuilt on every turn from the persisted session.
type machine struct {
	fsm     *fsm.FSM
	session string
	changed bool
}

func newMachine(session string, current State) *machine {
	m := &machine{session: session}
	m.fsm = fsm.NewFSM(string(current), transitions, fsm.Callbacks{
		"enter_state": m.enterState,
	})
	return m
}

// enterState runs only when the state actually changes.
func (m *machine) enterState(_ context.Context, e *fsm.Event) {
	m.changed = true

	slog.Debug("Session state changed",
		"session", m.session,
		"transition", e.Event,
		"from", e.Src,
		"to", e.Dst)
}

func (m *machine) State() State {
	return State(m.fsm.Current())
}

func (m *machine) Can(transition string) bool {
	return m.fsm.Can(transition)
}

func (m *machine) Fire(ctx context.Context, transition string) (State, error) {
	if err := m.fsm.Event(ctx, transition); err != nil {
		var same fsm.NoTransitionError
		if !errors.As(err, &same) {
			return m.State(), err
		}
	}
	return m.State(), nil
}
