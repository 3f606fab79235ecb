package poker

import "github.com/KirkDiggler/tablebot/internal/games"

// PlayerView is the public view of one seat. Hole cards are shown only at
// showdown for players who did not fold.
type PlayerView struct {
	ID        string `json:"id"`
	Stack     int64  `json:"stack"`
	Bet       int64  `json:"bet"`
	Committed int64  `json:"committed"`
	Folded    bool   `json:"folded,omitempty"`
	AllIn     bool   `json:"all_in,omitempty"`
	Out       bool   `json:"out,omitempty"`
	Dealer    bool   `json:"dealer,omitempty"`
	Hole      []Card `json:"hole,omitempty"`
	HandName  string `json:"hand_name,omitempty"`
}

// Snapshot is the public table state
type Snapshot struct {
	Phase      games.Phase  `json:"phase"`
	Street     Street       `json:"street"`
	Players    []PlayerView `json:"players"`
	Turn       string       `json:"turn,omitempty"`
	Board      []Card       `json:"board"`
	Pot        int64        `json:"pot"`
	CurrentBet int64        `json:"current_bet"`
	MinRaise   int64        `json:"min_raise"`
	Pots       []Pot        `json:"pots,omitempty"`
	Winners    []string     `json:"winners,omitempty"`
	LastAction games.Action `json:"last_action"`
}

func (e *Engine) Snapshot() any {
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Phase:      e.phase,
		Street:     e.street,
		Turn:       e.CurrentPlayer(),
		Board:      append([]Card{}, e.board...),
		Pot:        e.Pot(),
		CurrentBet: e.currentBet,
		MinRaise:   e.minRaise,
		Pots:       e.pots,
		Winners:    e.winners,
		LastAction: e.last,
	}
	for i, p := range e.players {
		v := PlayerView{
			ID:        p.ID,
			Stack:     p.Stack,
			Bet:       p.Bet,
			Committed: p.Committed,
			Folded:    p.Folded,
			AllIn:     p.AllIn,
			Out:       p.Out,
			Dealer:    i == e.dealer && e.phase != games.PhaseLobby,
		}
		if p.Hand != nil {
			v.Hole = append([]Card{}, p.Hole...)
			v.HandName = p.Hand.Name()
		}
		s.Players = append(s.Players, v)
	}
	return s
}
