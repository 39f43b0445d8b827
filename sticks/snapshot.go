package sticks

//go:generate mockgen -package=mocks -destination=mocks/mock_gateway.go github.com/tkahng/chopsticks/sticks Gateway

import (
	"context"
	"fmt"
	"strings"
)

// Snapshot is the stored form of a match. Hands are recorded relative to
// turn: "current" is the player due to move at that turn.
type Snapshot struct {
	Mode          Mode `json:"game_mode"`
	Turn          int  `json:"turn"`
	CurrentLeft   int  `json:"current_left"`
	CurrentRight  int  `json:"current_right"`
	OpposingLeft  int  `json:"opposing_left"`
	OpposingRight int  `json:"opposing_right"`
}

// Gateway loads and stores snapshots by save id.
type Gateway interface {
	// Load returns ErrSaveNotFound when id has never been saved
	Load(ctx context.Context, id string) (Snapshot, error)

	// Save upserts the snapshot under id without touching other ids
	Save(ctx context.Context, id string, snapshot Snapshot) error
}

// Validate checks the mode and rejects negative counts. There is no upper
// bound: a split may leave a living hand above the overflow limit.
func (s Snapshot) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSnapshot, ErrInvalidMode, string(s.Mode))
	}
	if s.Turn < 0 {
		return fmt.Errorf("%w: negative turn %d", ErrInvalidSnapshot, s.Turn)
	}
	for _, n := range []int{s.CurrentLeft, s.CurrentRight, s.OpposingLeft, s.OpposingRight} {
		if n < 0 {
			return fmt.Errorf("%w: negative finger count %d", ErrInvalidSnapshot, n)
		}
	}
	return nil
}

// Snapshot captures the match for persistence.
func (m *Match) Snapshot() Snapshot {
	c := m.Current().Pair()
	o := m.Opposing().Pair()
	return Snapshot{
		Mode:          m.mode,
		Turn:          m.turn,
		CurrentLeft:   c.Left,
		CurrentRight:  c.Right,
		OpposingLeft:  o.Left,
		OpposingRight: o.Right,
	}
}

// Restore rebuilds a match from a snapshot. Liveness comes from the finger
// counts and no win check runs until the next move.
func Restore(s Snapshot) (*Match, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMatch(s.Mode)
	if err != nil {
		return nil, err
	}
	m.turn = s.Turn
	m.Current().restore(Pair{Left: s.CurrentLeft, Right: s.CurrentRight})
	m.Opposing().restore(Pair{Left: s.OpposingLeft, Right: s.OpposingRight})
	return m, nil
}

// Save stores the match under id. The match keeps going afterwards.
func (m *Match) Save(ctx context.Context, gw Gateway, id string) error {
	if m.Finished() {
		return ErrMatchFinished
	}
	id, err := cleanID(id)
	if err != nil {
		return err
	}
	if err := gw.Save(ctx, id, m.Snapshot()); err != nil {
		return fmt.Errorf("save match %q: %w", id, err)
	}
	return nil
}

// Load fetches and restores the match saved under id.
func Load(ctx context.Context, gw Gateway, id string) (*Match, error) {
	id, err := cleanID(id)
	if err != nil {
		return nil, err
	}
	s, err := gw.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load match %q: %w", id, err)
	}
	return Restore(s)
}

func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty save id", ErrInvalidSnapshot)
	}
	return id, nil
}
