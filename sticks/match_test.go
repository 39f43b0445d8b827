package sticks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(t *testing.T, mode Mode) *Match {
	t.Helper()
	m, err := NewMatch(mode)
	require.NoError(t, err)
	return m
}

func TestNewMatch(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	assert.Equal(t, 0, m.Turn())
	assert.Equal(t, ModeStandard, m.Mode())
	assert.Equal(t, StateAwaitingAction, m.State())
	for i := 0; i < 2; i++ {
		assert.Equal(t, Pair{Left: 1, Right: 1}, m.Player(i).Pair())
		assert.True(t, m.Player(i).Left().Alive())
		assert.True(t, m.Player(i).Right().Alive())
	}
	_, ok := m.Winner()
	assert.False(t, ok)

	_, err := NewMatch(Mode("blitz"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestMatch_Attack(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Current().left.SetFingers(2)
	m.Opposing().right.SetFingers(1)

	require.NoError(t, m.Attack(Left, Right))

	// the defender is now the player to move
	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, 1, m.CurrentIndex())
	assert.Equal(t, 0, m.OpposingIndex())
	assert.Equal(t, Pair{Left: 1, Right: 3}, m.Current().Pair())
	assert.True(t, m.Current().Right().Alive())
}

func TestMatch_AttackKillsHand(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Current().left.SetFingers(3)
	m.Opposing().left.SetFingers(2)
	defender := m.Opposing()

	require.NoError(t, m.Attack(Left, Left))

	assert.Zero(t, defender.Left().Fingers())
	assert.False(t, defender.Left().Alive())
	assert.False(t, m.Finished())
}

func TestMatch_AttackErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *Match)
		attacker Side
		defender Side
		wantErr  error
	}{
		{
			name:     "invalid attacker side",
			attacker: Side(2),
			defender: Left,
			wantErr:  ErrInvalidHandSelection,
		},
		{
			name:     "invalid defender side",
			attacker: Left,
			defender: Side(-1),
			wantErr:  ErrInvalidHandSelection,
		},
		{
			name: "dead defender hand",
			setup: func(m *Match) {
				m.Opposing().right.Kill()
			},
			attacker: Left,
			defender: Right,
			wantErr:  ErrInactiveHand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatch(t, ModeStandard)
			if tt.setup != nil {
				tt.setup(m)
			}
			before := m.Snapshot()
			err := m.Attack(tt.attacker, tt.defender)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, m.Snapshot(), "rejected attack must not change the match")
		})
	}
}

func TestMatch_AttackWithDeadHandAddsZero(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Current().left.Kill()

	require.NoError(t, m.Attack(Left, Right))
	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, Pair{Left: 1, Right: 1}, m.Current().Pair())
}

func TestMatch_Split(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Current().left.SetFingers(1)
	m.Current().right.SetFingers(4)
	mover := m.Current()

	assert.ErrorIs(t, m.Split(1, 4), ErrNoOpSplit)
	assert.ErrorIs(t, m.Split(2, 4), ErrSplitSumMismatch)
	assert.Equal(t, 0, m.Turn(), "failed split must not advance the turn")

	require.NoError(t, m.Split(2, 3))
	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, Pair{Left: 2, Right: 3}, mover.Pair())
	assert.Same(t, mover, m.Opposing())
}

func TestMatch_WinByElimination(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Current().left.SetFingers(4)
	m.Opposing().left.Kill()
	m.Opposing().right.SetFingers(1)

	require.NoError(t, m.Attack(Left, Right))

	assert.True(t, m.Finished())
	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, 0, winner)
	assert.Equal(t, 1, m.Turn())
	assert.Equal(t, "Player 1", m.Board().Winner)

	assert.ErrorIs(t, m.Attack(Left, Left), ErrMatchFinished)
	assert.ErrorIs(t, m.Split(1, 1), ErrMatchFinished)
	assert.ErrorIs(t, m.Quit(), ErrMatchFinished)
}

func TestMatch_Quit(t *testing.T) {
	m := newTestMatch(t, ModeRollover)

	require.NoError(t, m.Quit())

	assert.Equal(t, 1, m.Turn())
	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, 1, winner, "the player who did not forfeit wins")
}

func TestMatch_TurnAlternation(t *testing.T) {
	m := newTestMatch(t, ModeRollover)
	p0, p1 := m.Player(0), m.Player(1)

	assert.Same(t, p0, m.Current())
	require.NoError(t, m.Attack(Left, Left))
	assert.Same(t, p1, m.Current())
	assert.Same(t, p0, m.Opposing())
	require.NoError(t, m.Attack(Right, Right))
	assert.Same(t, p0, m.Current())
	assert.Equal(t, 2, m.Turn())
}

func TestMatch_Apply(t *testing.T) {
	ctx := context.Background()
	m := newTestMatch(t, ModeStandard)

	res, err := m.Apply(ctx, nil, AttackIntent{Attacker: Left, Defender: Left})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Board.Turn)
	assert.Equal(t, "Player 2", res.Board.Current.Label)
	assert.Equal(t, 2, res.Board.Current.Left.Fingers)
	assert.False(t, res.Finished())

	_, err = m.Apply(ctx, nil, SplitIntent{Left: 1, Right: 2})
	require.NoError(t, err)

	_, err = m.Apply(ctx, nil, NewGameIntent{Mode: ModeStandard})
	assert.Error(t, err)

	res, err = m.Apply(ctx, nil, QuitIntent{})
	require.NoError(t, err)
	assert.True(t, res.Finished())
	assert.Equal(t, "Player 2", res.Winner)
}

func TestStart_NewGame(t *testing.T) {
	m, err := Start(context.Background(), nil, NewGameIntent{Mode: ModeGameOfFive})
	require.NoError(t, err)
	assert.Equal(t, ModeGameOfFive, m.Mode())

	_, err = Start(context.Background(), nil, NewGameIntent{Mode: "nope"})
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = Start(context.Background(), nil, QuitIntent{})
	assert.Error(t, err)
}

func TestMatch_Board(t *testing.T) {
	m := newTestMatch(t, ModeStandard)
	m.Opposing().right.Kill()

	b := m.Board()
	assert.Equal(t, ModeStandard, b.Mode)
	assert.Equal(t, "Player 1", b.Current.Label)
	assert.Equal(t, "Player 2", b.Opposing.Label)
	assert.Equal(t, HandView{Fingers: 0, Alive: false}, b.Opposing.Right)
	assert.Equal(t, 1, b.Opposing.Sum)
	assert.Empty(t, b.Winner)
}
