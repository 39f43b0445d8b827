package shell

import (
	"fmt"

	"github.com/tkahng/chopsticks/sticks"
)

func (s *Shell) drawBoard(b sticks.Board) {
	s.clearScreen()
	s.printf("mode: %s\n", b.Mode)
	s.printf("Opposing Hands (%s):\n", b.Opposing.Label)
	s.println("L , R")
	s.printf("%s , %s\n", hand(b.Opposing.Left), hand(b.Opposing.Right))
	s.printf("Your Hands (%s):\n", b.Current.Label)
	s.println("L , R")
	s.printf("%s , %s\n", hand(b.Current.Left), hand(b.Current.Right))
}

// hand shows a dead hand as x so it reads differently from a wrapped zero.
func hand(h sticks.HandView) string {
	if !h.Alive {
		return "x"
	}
	return fmt.Sprint(h.Fingers)
}

func (s *Shell) clearScreen() {
	if s.clear {
		_, _ = fmt.Fprint(s.out, clearSequence)
	}
}

func (s *Shell) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}
