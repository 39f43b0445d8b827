package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tkahng/chopsticks/sticks"
)

type MessageType string

// Inbound message types.
const (
	MessageTypeNewGame  MessageType = "new_game"
	MessageTypeLoadGame MessageType = "load_game"
	MessageTypeAttack   MessageType = "attack"
	MessageTypeSplit    MessageType = "split"
	MessageTypeSave     MessageType = "save"
	MessageTypeQuit     MessageType = "quit"
)

// Outbound message types.
const (
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeSaved   MessageType = "saved"
	MessageTypeGameEnd MessageType = "game_end"
	MessageTypeError   MessageType = "error"
)

type (
	Message struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data,omitempty"`
	}
	NewGameMessageData struct {
		Mode string `json:"mode"`
	}
	LoadGameMessageData struct {
		ID string `json:"id"`
	}
	AttackMessageData struct {
		Attacker string `json:"attacker"`
		Defender string `json:"defender"`
	}
	SplitMessageData struct {
		Left  int `json:"left"`
		Right int `json:"right"`
	}
	SaveMessageData struct {
		ID string `json:"id"`
	}

	WelcomeMessageData struct {
		SessionID string        `json:"session_id"`
		Modes     []sticks.Mode `json:"modes"`
	}
	SavedMessageData struct {
		ID    string       `json:"id"`
		Board sticks.Board `json:"board"`
	}
	GameEndMessageData struct {
		Winner string       `json:"winner"`
		Board  sticks.Board `json:"board"`
	}
	ErrorMessageData struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

// errBadMessage marks input that could not be decoded into an intent.
var errBadMessage = errors.New("bad message")

// decodeIntent turns a client message into the intent it asks for.
func decodeIntent(msg Message) (sticks.Intent, error) {
	switch msg.Type {
	case MessageTypeNewGame:
		var data NewGameMessageData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		mode, err := sticks.ParseMode(data.Mode)
		if err != nil {
			return nil, err
		}
		return sticks.NewGameIntent{Mode: mode}, nil

	case MessageTypeLoadGame:
		var data LoadGameMessageData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		return sticks.LoadGameIntent{ID: data.ID}, nil

	case MessageTypeAttack:
		var data AttackMessageData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		attacker, err := sticks.ParseSide(data.Attacker)
		if err != nil {
			return nil, err
		}
		defender, err := sticks.ParseSide(data.Defender)
		if err != nil {
			return nil, err
		}
		return sticks.AttackIntent{Attacker: attacker, Defender: defender}, nil

	case MessageTypeSplit:
		var data SplitMessageData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		return sticks.SplitIntent{Left: data.Left, Right: data.Right}, nil

	case MessageTypeSave:
		var data SaveMessageData
		if err := decodeData(msg, &data); err != nil {
			return nil, err
		}
		return sticks.SaveIntent{ID: data.ID}, nil

	case MessageTypeQuit:
		return sticks.QuitIntent{}, nil
	}
	return nil, fmt.Errorf("%w: unknown action type %q", errBadMessage, msg.Type)
}

func decodeData(msg Message, v any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%w: %s needs data", errBadMessage, msg.Type)
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", errBadMessage, msg.Type, err)
	}
	return nil
}

func encode(msgType MessageType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Data: raw})
}

// Stable codes for errors sent to clients.
var errorCodes = []struct {
	err  error
	code string
}{
	{sticks.ErrInactiveHand, "inactive_hand"},
	{sticks.ErrInsufficientFingers, "insufficient_fingers"},
	{sticks.ErrNegativeFingers, "negative_fingers"},
	{sticks.ErrDeadHandSplit, "dead_hand_split"},
	{sticks.ErrSplitSumMismatch, "split_sum_mismatch"},
	{sticks.ErrNoOpSplit, "no_op_split"},
	{sticks.ErrInvalidHandSelection, "invalid_hand_selection"},
	{sticks.ErrInvalidMode, "invalid_mode"},
	{sticks.ErrMatchFinished, "match_finished"},
	{sticks.ErrSaveNotFound, "save_not_found"},
	{sticks.ErrInvalidSnapshot, "invalid_snapshot"},
	{errBadMessage, "bad_message"},
	{errNoMatch, "no_match"},
	{errMatchInProgress, "match_in_progress"},
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
