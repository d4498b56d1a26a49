package battleship

type PlayerStats struct {
	Shots  int `json:"shots"`
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

func (ps *PlayerStats) record(hit bool) {
	ps.Shots++
	if hit {
		ps.Hits++
		return
	}
	ps.Misses++
}

// Accuracy is the percentage of shots that hit, 0 when nothing was fired.
func (ps PlayerStats) Accuracy() float64 {
	if ps.Shots == 0 {
		return 0
	}
	return float64(ps.Hits) * 100 / float64(ps.Shots)
}

// Player is one seat in a match. The board is created empty when the player
// joins and is replaced wholesale when their fleet is accepted.
type Player struct {
	ID    string
	Board *Board
	Ready bool
	Stats PlayerStats
}

func NewPlayer(id string) *Player {
	return &Player{
		ID:    id,
		Board: NewBoard(),
	}
}
