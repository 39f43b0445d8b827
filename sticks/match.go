package sticks

import (
	"fmt"
)

// State represents where a match is in its lifecycle
type State string

const (
	StateAwaitingAction State = "awaiting_action"
	StateFinished       State = "finished"
)

// MatchInterface is the set of moves a shell can drive.
type MatchInterface interface {
	Attack(attacker, defender Side) error
	Split(left, right int) error
	Quit() error
	Current() *Player
	Opposing() *Player
	Board() Board
}

var _ MatchInterface = (*Match)(nil)

// Match is a two player game. Whose move it is derives from turn alone:
// the current player is players[turn%2].
type Match struct {
	mode    Mode
	players [2]*Player
	turn    int
	winner  int
	state   State
}

// NewMatch creates a fresh match at turn 0 with every hand holding one finger.
func NewMatch(mode Mode) (*Match, error) {
	m := &Match{
		players: [2]*Player{NewPlayer(), NewPlayer()},
		state:   StateAwaitingAction,
		winner:  -1,
	}
	if err := m.SetMode(mode); err != nil {
		return nil, err
	}
	return m, nil
}

// SetMode stores the ruleset every hand of the match is played under.
func (m *Match) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	m.mode = mode
	return nil
}

func (m *Match) Mode() Mode {
	return m.mode
}

func (m *Match) Turn() int {
	return m.turn
}

func (m *Match) State() State {
	return m.state
}

func (m *Match) Finished() bool {
	return m.state == StateFinished
}

// Winner returns the winning player index once the match is finished.
func (m *Match) Winner() (int, bool) {
	if m.state != StateFinished {
		return 0, false
	}
	return m.winner, true
}

func (m *Match) CurrentIndex() int {
	return m.turn % 2
}

func (m *Match) OpposingIndex() int {
	return (m.turn + 1) % 2
}

func (m *Match) Current() *Player {
	return m.players[m.CurrentIndex()]
}

func (m *Match) Opposing() *Player {
	return m.players[m.OpposingIndex()]
}

// Player returns the player at a stable index, 0 or 1.
func (m *Match) Player(index int) *Player {
	return m.players[index&1]
}

// Attack adds the current player's attacker hand onto the opposing
// player's defender hand. Attacking with a dead hand adds zero.
func (m *Match) Attack(attacker, defender Side) error {
	if m.Finished() {
		return ErrMatchFinished
	}
	from, err := m.Current().Hand(attacker)
	if err != nil {
		return err
	}
	to, err := m.Opposing().Hand(defender)
	if err != nil {
		return err
	}
	if err := to.AddFingers(from.Fingers(), m.mode); err != nil {
		return fmt.Errorf("attack %s hand: %w", defender, err)
	}
	m.endTurn()
	return nil
}

// Split redistributes the current player's fingers. On failure the turn
// does not advance.
func (m *Match) Split(left, right int) error {
	if m.Finished() {
		return ErrMatchFinished
	}
	if err := m.Current().Split(left, right); err != nil {
		return err
	}
	m.endTurn()
	return nil
}

// Quit forfeits the match for the current player.
func (m *Match) Quit() error {
	if m.Finished() {
		return ErrMatchFinished
	}
	m.turn++
	m.finish(m.CurrentIndex())
	return nil
}

// endTurn hands the move to the other player and checks whether the player
// who was just acted upon has run out of fingers.
func (m *Match) endTurn() {
	m.players[0].RecomputeSum()
	m.players[1].RecomputeSum()

	m.turn++

	if m.Current().HandSum() == 0 {
		m.finish(m.OpposingIndex())
	}
}

func (m *Match) finish(winner int) {
	m.winner = winner
	m.state = StateFinished
}

// PlayerLabel is the display name of the player at index.
func PlayerLabel(index int) string {
	return fmt.Sprintf("Player %d", index%2+1)
}
