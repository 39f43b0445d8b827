package sticks

import "errors"

// Validation errors. None of them end a match; the shell reports them and
// asks again.
var (
	ErrInactiveHand         = errors.New("hand is not active")
	ErrInsufficientFingers  = errors.New("not enough fingers to take")
	ErrNegativeFingers      = errors.New("finger count cannot be negative")
	ErrDeadHandSplit        = errors.New("can't split into a dead hand")
	ErrSplitSumMismatch     = errors.New("split sum does not match hand sum")
	ErrNoOpSplit            = errors.New("split is identical to current hands")
	ErrInvalidHandSelection = errors.New("invalid hand selection")
	ErrInvalidMode          = errors.New("invalid game mode")
	ErrMatchFinished        = errors.New("match is already finished")
)

// Persistence errors.
var (
	ErrSaveNotFound    = errors.New("save not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

var recoverable = []error{
	ErrInactiveHand,
	ErrInsufficientFingers,
	ErrNegativeFingers,
	ErrDeadHandSplit,
	ErrSplitSumMismatch,
	ErrNoOpSplit,
	ErrInvalidHandSelection,
	ErrInvalidMode,
	ErrMatchFinished,
	ErrSaveNotFound,
	ErrInvalidSnapshot,
}

// Recoverable reports whether err is a rejected request the player can
// correct. Anything else, such as an unreachable store, is fatal.
func Recoverable(err error) bool {
	for _, target := range recoverable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
