package uno

import "github.com/KirkDiggler/tablebot/internal/games"

// PlayerView is the public view of one seat
type PlayerView struct {
	ID        string `json:"id"`
	Cards     int    `json:"cards"`
	Out       bool   `json:"out,omitempty"`
	CalledUno bool   `json:"called_uno,omitempty"`
}

// Snapshot is the public table state. Hands are never included.
type Snapshot struct {
	Phase         games.Phase  `json:"phase"`
	Players       []PlayerView `json:"players"`
	Turn          string       `json:"turn,omitempty"`
	Direction     int          `json:"direction"`
	Top           *Card        `json:"top,omitempty"`
	Color         Color        `json:"color,omitempty"`
	PendingDraw   int          `json:"pending_draw,omitempty"`
	AwaitingColor bool         `json:"awaiting_color,omitempty"`
	DrawPile      int          `json:"draw_pile"`
	DiscardPile   int          `json:"discard_pile"`
	Winner        string       `json:"winner,omitempty"`
	LastAction    games.Action `json:"last_action"`
}

func (e *Engine) Snapshot() any {
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Phase:         e.phase,
		Turn:          e.CurrentPlayer(),
		Direction:     e.direction,
		Color:         e.color,
		PendingDraw:   e.pending,
		AwaitingColor: e.awaitingColor,
		DrawPile:      e.draw.Len(),
		DiscardPile:   e.discard.Len(),
		Winner:        e.winner,
		LastAction:    e.last,
	}
	if top, ok := e.discard.Peek(); ok {
		s.Top = &top
	}
	for _, p := range e.players {
		s.Players = append(s.Players, PlayerView{
			ID:        p.ID,
			Cards:     len(p.Hand),
			Out:       p.Out,
			CalledUno: p.CalledUno,
		})
	}
	return s
}
