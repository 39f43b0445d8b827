package sticks

import (
	"fmt"
	"strings"
)

// Side picks one of a player's two hands.
type Side int

const (
	Left Side = iota
	Right
)

// ParseSide accepts "left", "right", "l" or "r" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidHandSelection, s)
}

func (s Side) Valid() bool {
	return s == Left || s == Right
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Hand holds one finger count. A dead hand always holds 0 fingers.
type Hand struct {
	fingers int
	alive   bool
}

func NewHand() Hand {
	return Hand{
		fingers: 1,
		alive:   true,
	}
}

func (h *Hand) Fingers() int {
	return h.fingers
}

func (h *Hand) Alive() bool {
	return h.alive
}

// AddFingers adds n fingers and then applies the overflow rule of mode,
// which may kill the hand.
func (h *Hand) AddFingers(n int, mode Mode) error {
	if !h.alive {
		return ErrInactiveHand
	}
	if n < 0 {
		return fmt.Errorf("%w: add %d", ErrNegativeFingers, n)
	}
	h.fingers += n
	mode.normalize(h)
	return nil
}

func (h *Hand) SubtractFingers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: subtract %d", ErrNegativeFingers, n)
	}
	if n > h.fingers {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientFingers, h.fingers, n)
	}
	h.fingers -= n
	return nil
}

// SetFingers assigns the count directly, skipping overflow rules.
func (h *Hand) SetFingers(n int) {
	h.fingers = n
	h.alive = n != 0
}

func (h *Hand) Kill() {
	h.SetFingers(0)
	h.alive = false
}
