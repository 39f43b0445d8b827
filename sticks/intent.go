package sticks

import (
	"context"
	"fmt"
	"strings"
)

// Intent is one validated request from a shell. The concrete types below
// are the only implementations.
type Intent interface {
	intent()
}

type (
	// NewGameIntent starts a fresh match.
	NewGameIntent struct {
		Mode Mode
	}
	// LoadGameIntent resumes a saved match.
	LoadGameIntent struct {
		ID string
	}
	SplitIntent struct {
		Left  int
		Right int
	}
	AttackIntent struct {
		Attacker Side
		Defender Side
	}
	SaveIntent struct {
		ID string
	}
	QuitIntent struct{}
)

func (NewGameIntent) intent()  {}
func (LoadGameIntent) intent() {}
func (SplitIntent) intent()    {}
func (AttackIntent) intent()   {}
func (SaveIntent) intent()     {}
func (QuitIntent) intent()     {}

// Result is what a shell shows after an intent was applied.
type Result struct {
	Board Board
	// SavedID is set when the intent was a successful save
	SavedID string
	// Winner is the winning label once the match is over
	Winner string
}

func (r Result) Finished() bool {
	return r.Winner != ""
}

// Start builds a match from a setup intent.
func Start(ctx context.Context, gw Gateway, in Intent) (*Match, error) {
	switch in := in.(type) {
	case NewGameIntent:
		return NewMatch(in.Mode)
	case LoadGameIntent:
		return Load(ctx, gw, in.ID)
	}
	return nil, fmt.Errorf("cannot start a match from %T", in)
}

// Apply runs one in-game intent. A rejected intent leaves the match as it was.
func (m *Match) Apply(ctx context.Context, gw Gateway, in Intent) (Result, error) {
	var res Result
	var err error
	switch in := in.(type) {
	case SplitIntent:
		err = m.Split(in.Left, in.Right)
	case AttackIntent:
		err = m.Attack(in.Attacker, in.Defender)
	case SaveIntent:
		if err = m.Save(ctx, gw, in.ID); err == nil {
			res.SavedID = strings.TrimSpace(in.ID)
		}
	case QuitIntent:
		err = m.Quit()
	default:
		err = fmt.Errorf("cannot apply %T to a running match", in)
	}
	if err != nil {
		return Result{}, err
	}
	res.Board = m.Board()
	if w, ok := m.Winner(); ok {
		res.Winner = PlayerLabel(w)
	}
	return res, nil
}
