package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/chopsticks/sticks"
)

func TestDecodeIntent(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		want    sticks.Intent
		wantErr error
	}{
		{
			name: "new game",
			msg:  `{"type":"new_game","data":{"mode":"Game of Five"}}`,
			want: sticks.NewGameIntent{Mode: sticks.ModeGameOfFive},
		},
		{
			name: "load game",
			msg:  `{"type":"load_game","data":{"id":"a"}}`,
			want: sticks.LoadGameIntent{ID: "a"},
		},
		{
			name: "attack",
			msg:  `{"type":"attack","data":{"attacker":"left","defender":"r"}}`,
			want: sticks.AttackIntent{Attacker: sticks.Left, Defender: sticks.Right},
		},
		{
			name: "split",
			msg:  `{"type":"split","data":{"left":2,"right":3}}`,
			want: sticks.SplitIntent{Left: 2, Right: 3},
		},
		{
			name: "save",
			msg:  `{"type":"save","data":{"id":"slot"}}`,
			want: sticks.SaveIntent{ID: "slot"},
		},
		{
			name: "quit",
			msg:  `{"type":"quit"}`,
			want: sticks.QuitIntent{},
		},
		{
			name:    "bad side",
			msg:     `{"type":"attack","data":{"attacker":"up","defender":"left"}}`,
			wantErr: sticks.ErrInvalidHandSelection,
		},
		{
			name:    "bad mode",
			msg:     `{"type":"new_game","data":{"mode":""}}`,
			wantErr: sticks.ErrInvalidMode,
		},
		{
			name:    "wrong data shape",
			msg:     `{"type":"split","data":{"left":"two"}}`,
			wantErr: errBadMessage,
		},
		{
			name:    "unknown",
			msg:     `{"type":"state"}`,
			wantErr: errBadMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg Message
			require.NoError(t, json.Unmarshal([]byte(tt.msg), &msg))
			got, err := decodeIntent(msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("split: %w", sticks.ErrSplitSumMismatch), "split_sum_mismatch"},
		{sticks.ErrNoOpSplit, "no_op_split"},
		{fmt.Errorf("load match %q: %w", "x", sticks.ErrSaveNotFound), "save_not_found"},
		{errors.Join(errBadMessage, errors.New("eof")), "bad_message"},
		{errMatchInProgress, "match_in_progress"},
		{errors.New("disk on fire"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(MessageTypeSaved, SavedMessageData{ID: "slot"})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(b, &msg))
	assert.Equal(t, MessageTypeSaved, msg.Type)
	assert.JSONEq(t, `"slot"`, string(mustField(t, msg.Data, "id")))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	v, ok := fields[key]
	require.True(t, ok, "missing %q in %s", key, raw)
	return v
}
