// Package shell runs a match as a prompt and response loop over text.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tkahng/chopsticks/sticks"
)

// ErrInputClosed is returned when input ends before the match does.
var ErrInputClosed = errors.New("input closed")

const clearSequence = "\033[H\033[2J"

type Config struct {
	In      io.Reader
	Out     io.Writer
	Gateway sticks.Gateway
	Logger  *slog.Logger

	// ClearScreen clears the terminal before each board is drawn
	ClearScreen bool
}

// Shell owns the prompts. Every retry is a loop here; the match itself never
// asks for input.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	gw     sticks.Gateway
	logger *slog.Logger
	clear  bool
}

func New(cfg Config) (*Shell, error) {
	if cfg.In == nil {
		return nil, errors.New("input cannot be nil")
	}
	if cfg.Out == nil {
		return nil, errors.New("output cannot be nil")
	}
	if cfg.Gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		in:     bufio.NewScanner(cfg.In),
		out:    cfg.Out,
		gw:     cfg.Gateway,
		logger: logger,
		clear:  cfg.ClearScreen,
	}, nil
}

// Run plays one session: pick or load a match, then take turns until the
// match ends, is saved, or input runs out.
func (s *Shell) Run(ctx context.Context) error {
	s.clearScreen()
	s.println("welcome to Chopsticks!")

	m, err := s.setup(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("match started",
		slog.String("mode", m.Mode().String()),
		slog.Int("turn", m.Turn()))
	return s.play(ctx, m)
}

func (s *Shell) setup(ctx context.Context) (*sticks.Match, error) {
	for {
		s.println("Would you like to play a new game or load a save?")
		s.println("Options: \nNew \nLoad")
		choice, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}

		var m *sticks.Match
		switch strings.ToLower(choice) {
		case "new", "n":
			m, err = s.newGame(ctx)
		case "load", "l":
			m, err = s.loadGame(ctx)
		default:
			s.println("Invalid choice, Please type New or Load")
			continue
		}
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
}

func (s *Shell) newGame(ctx context.Context) (*sticks.Match, error) {
	s.println("A new game! How fun")
	for {
		s.println("What game mode would you like to play?")
		s.println("Options: \nStandard \nRollover \nGame of Five")
		choice, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		mode, err := sticks.ParseMode(choice)
		if err != nil {
			s.printf("invalid variation choice %q\n", choice)
			continue
		}
		return sticks.Start(ctx, s.gw, sticks.NewGameIntent{Mode: mode})
	}
}

// loadGame returns a nil match when the player leaves the prompt blank.
func (s *Shell) loadGame(ctx context.Context) (*sticks.Match, error) {
	for {
		s.println("please provide your save ID (leave blank to go back):")
		id, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, nil
		}
		m, err := sticks.Start(ctx, s.gw, sticks.LoadGameIntent{ID: id})
		switch {
		case errors.Is(err, sticks.ErrSaveNotFound):
			s.printf("no save found with ID %q\n", id)
			continue
		case errors.Is(err, sticks.ErrInvalidSnapshot):
			s.printf("save %q cannot be resumed: %v\n", id, err)
			continue
		case err != nil:
			return nil, err
		}
		return m, nil
	}
}

func (s *Shell) play(ctx context.Context, m *sticks.Match) error {
	for {
		board := m.Board()
		s.drawBoard(board)
		s.printf("the current turn is %d\n", board.Turn)
		s.printf("the current player is %s\n", board.Current.Label)
		s.println("would you like to split or attack?")
		s.println("You can also quit or save the game :)")

		action, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		intent, err := s.readIntent(ctx, strings.ToLower(action))
		if err != nil {
			return err
		}
		if intent == nil {
			s.println("Invalid Action")
			s.println("please type any of the following: Split/Attack/Save/Quit")
			continue
		}

		res, err := m.Apply(ctx, s.gw, intent)
		if err != nil {
			if !sticks.Recoverable(err) {
				return err
			}
			s.printf("that move is not allowed: %v\n", err)
			continue
		}

		if res.SavedID != "" {
			s.logger.Info("match saved", slog.String("id", res.SavedID), slog.Int("turn", res.Board.Turn))
			s.println("save completed!")
			return nil
		}
		if _, ok := intent.(sticks.QuitIntent); ok {
			s.println("It's okay to lose!")
		}
		if res.Finished() {
			s.drawBoard(res.Board)
			s.printf("The Winner is %s!!!\n", res.Winner)
			s.logger.Info("match finished", slog.String("winner", res.Winner), slog.Int("turn", res.Board.Turn))
			return nil
		}
	}
}

// readIntent asks the follow-up questions for action. A nil intent means
// the action was not recognised.
func (s *Shell) readIntent(ctx context.Context, action string) (sticks.Intent, error) {
	switch action {
	case "split", "s":
		return s.readSplit(ctx)
	case "attack", "a":
		return s.readAttack(ctx)
	case "save":
		s.println("what ID would you like to give this game?")
		s.println("provide a string :)")
		for {
			id, err := s.readLine(ctx)
			if err != nil {
				return nil, err
			}
			if id != "" {
				return sticks.SaveIntent{ID: id}, nil
			}
			s.println("the save ID cannot be empty")
		}
	case "quit", "q":
		return sticks.QuitIntent{}, nil
	}
	return nil, nil
}

func (s *Shell) readSplit(ctx context.Context) (sticks.Intent, error) {
	for {
		s.println("how would you like to split your hands?")
		s.println("please provide in Left,Right form")
		line, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		left, right, err := parseSplit(line)
		if err != nil {
			s.printf("invalid split %q: %v\n", line, err)
			continue
		}
		return sticks.SplitIntent{Left: left, Right: right}, nil
	}
}

func (s *Shell) readAttack(ctx context.Context) (sticks.Intent, error) {
	attacker, err := s.readSide(ctx, "Would you like to use your Left or Right Hand?")
	if err != nil {
		return nil, err
	}
	defender, err := s.readSide(ctx, "Which hand would you like to hit?")
	if err != nil {
		return nil, err
	}
	return sticks.AttackIntent{Attacker: attacker, Defender: defender}, nil
}

func (s *Shell) readSide(ctx context.Context, question string) (sticks.Side, error) {
	for {
		s.println(question)
		s.println("Please type Left or Right")
		line, err := s.readLine(ctx)
		if err != nil {
			return 0, err
		}
		side, err := sticks.ParseSide(line)
		if err != nil {
			s.println("invalid input for hand choice. Please Try Again")
			continue
		}
		return side, nil
	}
}

func parseSplit(line string) (int, int, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("expected two numbers separated by a comma")
	}
	left, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("left: %w", err)
	}
	right, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("right: %w", err)
	}
	return left, right, nil
}

func (s *Shell) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}
