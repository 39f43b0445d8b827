package sticks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "split mismatch", err: fmt.Errorf("%w: 1+1 != 3", ErrSplitSumMismatch), want: true},
		{name: "wrapped inactive hand", err: fmt.Errorf("attack left hand: %w", ErrInactiveHand), want: true},
		{name: "missing save", err: fmt.Errorf("load match %q: %w", "x", ErrSaveNotFound), want: true},
		{name: "storage failure", err: errors.New("connection refused"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recoverable(tt.err))
		})
	}
}
