package sticks

import (
	"fmt"
)

type Player struct {
	left    Hand
	right   Hand
	handSum int
}

func NewPlayer() *Player {
	p := &Player{
		left:  NewHand(),
		right: NewHand(),
	}
	p.RecomputeSum()
	return p
}

// Hand returns the hand on the given side.
func (p *Player) Hand(side Side) (*Hand, error) {
	switch side {
	case Left:
		return &p.left, nil
	case Right:
		return &p.right, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidHandSelection, side)
}

func (p *Player) Left() *Hand {
	return &p.left
}

func (p *Player) Right() *Hand {
	return &p.right
}

func (p *Player) RecomputeSum() int {
	p.handSum = p.left.fingers + p.right.fingers
	return p.handSum
}

// HandSum recomputes on every read so it can never go stale.
func (p *Player) HandSum() int {
	return p.RecomputeSum()
}

// Alive reports whether the player still has a finger on either hand.
func (p *Player) Alive() bool {
	return p.HandSum() != 0
}

// Split redistributes the player's fingers between both hands. The total
// must stay the same and the result must differ from the current hands.
// Overflow rules are not applied; a zero kills that hand.
func (p *Player) Split(newLeft, newRight int) error {
	p.RecomputeSum()

	if !p.left.alive || !p.right.alive {
		return ErrDeadHandSplit
	}
	if newLeft < 0 || newRight < 0 {
		return fmt.Errorf("%w: split %d,%d", ErrNegativeFingers, newLeft, newRight)
	}
	if newLeft+newRight != p.handSum {
		return fmt.Errorf("%w: %d+%d != %d", ErrSplitSumMismatch, newLeft, newRight, p.handSum)
	}
	if newLeft == p.left.fingers && newRight == p.right.fingers {
		return ErrNoOpSplit
	}

	p.left.SetFingers(newLeft)
	p.right.SetFingers(newRight)
	p.RecomputeSum()
	return nil
}

// Pair is a player's hands as plain counts, left first.
type Pair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func (p *Player) Pair() Pair {
	return Pair{Left: p.left.fingers, Right: p.right.fingers}
}

// restore sets both hands from stored counts; liveness follows the count.
func (p *Player) restore(pair Pair) {
	p.left.SetFingers(pair.Left)
	p.right.SetFingers(pair.Right)
	p.RecomputeSum()
}
