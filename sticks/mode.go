package sticks

import (
	"fmt"
	"strings"
)

// Mode is the ruleset that decides what happens when a hand overflows.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeRollover   Mode = "rollover"
	ModeGameOfFive Mode = "game of five"
)

// Modes returns every playable mode in menu order.
func Modes() []Mode {
	return []Mode{ModeStandard, ModeRollover, ModeGameOfFive}
}

// ParseMode accepts any casing and the hyphenated or squashed spellings of
// "game of five".
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "standard":
		return ModeStandard, nil
	case "rollover":
		return ModeRollover, nil
	case "game of five", "game-of-five", "game_of_five", "gameoffive":
		return ModeGameOfFive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeRollover, ModeGameOfFive:
		return true
	}
	return false
}

// normalize applies the overflow rule after fingers were added to h.
func (m Mode) normalize(h *Hand) {
	switch m {
	case ModeStandard:
		if h.fingers >= 5 {
			h.Kill()
		}
	case ModeRollover:
		if h.fingers == 5 {
			h.Kill()
		} else {
			h.fingers = h.fingers % 5
		}
	case ModeGameOfFive:
		if h.fingers > 5 {
			h.Kill()
		}
	}
}

func (m Mode) String() string {
	return string(m)
}
