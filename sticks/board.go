package sticks

// HandView is one hand as shown to the players.
type HandView struct {
	Fingers int  `json:"fingers"`
	Alive   bool `json:"alive"`
}

// Seat is one player's side of the board.
type Seat struct {
	Label string   `json:"label"`
	Left  HandView `json:"left"`
	Right HandView `json:"right"`
	Sum   int      `json:"sum"`
}

// Board is everything a shell needs to draw the position.
type Board struct {
	Mode     Mode   `json:"mode"`
	Turn     int    `json:"turn"`
	State    State  `json:"state"`
	Current  Seat   `json:"current"`
	Opposing Seat   `json:"opposing"`
	Winner   string `json:"winner,omitempty"`
}

func (m *Match) Board() Board {
	b := Board{
		Mode:     m.mode,
		Turn:     m.turn,
		State:    m.state,
		Current:  seat(m.CurrentIndex(), m.Current()),
		Opposing: seat(m.OpposingIndex(), m.Opposing()),
	}
	if w, ok := m.Winner(); ok {
		b.Winner = PlayerLabel(w)
	}
	return b
}

func seat(index int, p *Player) Seat {
	return Seat{
		Label: PlayerLabel(index),
		Left:  HandView{Fingers: p.left.fingers, Alive: p.left.alive},
		Right: HandView{Fingers: p.right.fingers, Alive: p.right.alive},
		Sum:   p.HandSum(),
	}
}
