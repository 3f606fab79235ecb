// Package uno implements the Uno rule engine.
package uno

import (
	"fmt"

	"github.com/KirkDiggler/tablebot/internal/deck"
	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/rng"
)

const (
	defaultMinPlayers = 2
	defaultMaxPlayers = 10
	defaultHandSize   = 7
	catchPenalty      = 2
)

// Config holds table limits
type Config struct {
	MinPlayers int
	MaxPlayers int
	HandSize   int
}

// Player is one seat at the table
type Player struct {
	ID        string
	Hand      []Card
	Out       bool
	CalledUno bool
}

// Engine is an Uno table
type Engine struct {
	cfg Config
	src rng.Source

	phase   games.Phase
	players []*Player

	draw    *deck.Pile[Card]
	discard *deck.Pile[Card]

	turn          int
	direction     int
	color         Color
	pending       int
	awaitingColor bool
	drawn         int // hand index of a playable card drawn this turn, or -1

	winner string
	last   games.Action
}

var _ games.Engine = (*Engine)(nil)

// New creates an Uno table in the lobby phase
func New(cfg *Config, src rng.Source) *Engine {
	c := Config{MinPlayers: defaultMinPlayers, MaxPlayers: defaultMaxPlayers, HandSize: defaultHandSize}
	if cfg != nil {
		if cfg.MinPlayers > 0 {
			c.MinPlayers = cfg.MinPlayers
		}
		if cfg.MaxPlayers > 0 {
			c.MaxPlayers = cfg.MaxPlayers
		}
		if cfg.HandSize > 0 {
			c.HandSize = cfg.HandSize
		}
	}
	if src == nil {
		src = rng.New(nil)
	}

	return &Engine{
		cfg:       c,
		src:       src,
		phase:     games.PhaseLobby,
		draw:      deck.New[Card](nil),
		discard:   deck.New[Card](nil),
		direction: 1,
		drawn:     -1,
	}
}

func (e *Engine) Kind() games.Kind   { return games.KindUno }
func (e *Engine) Phase() games.Phase { return e.phase }

func (e *Engine) AddPlayer(id string) bool {
	if e.phase != games.PhaseLobby || id == "" || e.seatOf(id) >= 0 || len(e.players) >= e.cfg.MaxPlayers {
		return false
	}
	e.players = append(e.players, &Player{ID: id})
	return true
}

func (e *Engine) RemovePlayer(id string) bool {
	if e.phase != games.PhaseLobby {
		return false
	}
	seat := e.seatOf(id)
	if seat < 0 {
		return false
	}
	e.players = append(e.players[:seat], e.players[seat+1:]...)
	return true
}

func (e *Engine) Players() []string {
	ids := make([]string, len(e.players))
	for i, p := range e.players {
		ids[i] = p.ID
	}
	return ids
}

// Start shuffles, deals and flips the first number card
func (e *Engine) Start() bool {
	if e.phase != games.PhaseLobby || len(e.players) < e.cfg.MinPlayers {
		return false
	}
	e.phase = games.PhaseDealing

	e.draw = deck.New(NewDeck())
	e.draw.Shuffle(e.src)
	for round := 0; round < e.cfg.HandSize; round++ {
		for _, p := range e.players {
			c, _ := e.draw.Draw()
			p.Hand = append(p.Hand, c)
		}
	}

	// The starting card must be a number card; anything else goes back in.
	for {
		c, _ := e.draw.Draw()
		if c.IsNumber() {
			e.discard.Push(c)
			e.color = c.Color
			break
		}
		e.draw.PushBottom(c)
		e.draw.Shuffle(e.src)
	}

	e.turn = e.src.Intn(len(e.players))
	e.direction = 1
	e.phase = games.PhaseActive
	e.last = games.Action{Verb: "started", Detail: fmt.Sprintf("%d players", len(e.players))}
	return true
}

func (e *Engine) Apply(playerID string, move games.Move) (games.Outcome, error) {
	if e.phase != games.PhaseActive {
		return games.Outcome{}, games.ErrGameNotActive
	}
	seat := e.seatOf(playerID)
	if seat < 0 || e.players[seat].Out {
		return games.Outcome{}, games.ErrNotInGame
	}

	if m, ok := move.(Catch); ok {
		return e.catch(seat, m)
	}
	if seat != e.turn {
		return games.Outcome{}, games.ErrNotYourTurn
	}

	if e.awaitingColor {
		m, ok := move.(ChooseColor)
		if !ok {
			return games.Outcome{}, games.ErrIllegalMove
		}
		return e.chooseColor(seat, m)
	}

	switch m := move.(type) {
	case Play:
		return e.play(seat, m)
	case Draw:
		return e.drawMove(seat)
	case Pass:
		return e.pass(seat)
	case ChooseColor:
		return games.Outcome{}, games.ErrIllegalMove
	default:
		return games.Outcome{}, games.ErrUnknownMove
	}
}

// Forfeit takes a player out of an active game. Their cards go under the
// draw pile. If one player is left standing they win.
func (e *Engine) Forfeit(playerID string) (games.Outcome, error) {
	if e.phase != games.PhaseActive {
		return games.Outcome{}, games.ErrGameNotActive
	}
	seat := e.seatOf(playerID)
	if seat < 0 || e.players[seat].Out {
		return games.Outcome{}, games.ErrNotInGame
	}

	p := e.players[seat]
	p.Out = true
	p.CalledUno = false
	e.draw.PushBottom(p.Hand...)
	p.Hand = nil
	e.last = games.Action{PlayerID: p.ID, Verb: "forfeited"}

	if e.activeCount() == 1 {
		e.finish(e.nextSeat(seat))
		return e.outcome(), nil
	}

	if seat == e.turn {
		if e.awaitingColor {
			e.color = Colors[e.src.Intn(len(Colors))]
			e.awaitingColor = false
		} else {
			// The penalty was aimed at the player who left.
			e.pending = 0
		}
		e.drawn = -1
		e.advance(1)
	}
	return e.outcome(), nil
}

func (e *Engine) CurrentPlayer() string {
	if e.phase != games.PhaseActive {
		return ""
	}
	return e.players[e.turn].ID
}

// Results scores the winner with the points left in the other hands
func (e *Engine) Results() []games.Result {
	if e.phase != games.PhaseFinished {
		return nil
	}
	var points int64
	for _, p := range e.players {
		if p.ID == e.winner {
			continue
		}
		for _, c := range p.Hand {
			points += c.Points()
		}
	}
	results := make([]games.Result, 0, len(e.players))
	for _, p := range e.players {
		r := games.Result{PlayerID: p.ID, Won: p.ID == e.winner}
		if r.Won {
			r.Score = points
		}
		results = append(results, r)
	}
	return results
}

// Hand returns a copy of a player's hand
func (e *Engine) Hand(playerID string) []Card {
	seat := e.seatOf(playerID)
	if seat < 0 {
		return nil
	}
	out := make([]Card, len(e.players[seat].Hand))
	copy(out, e.players[seat].Hand)
	return out
}

// LegalPlays returns the hand indexes the player could play right now
func (e *Engine) LegalPlays(playerID string) []int {
	seat := e.seatOf(playerID)
	if e.phase != games.PhaseActive || seat != e.turn || e.awaitingColor {
		return nil
	}
	var idx []int
	for i, c := range e.players[seat].Hand {
		if e.drawn >= 0 && i != e.drawn {
			continue
		}
		if e.playable(c) {
			idx = append(idx, i)
		}
	}
	return idx
}

// MustDrawOrPass reports whether the current player already drew and may
// now only play that card or pass
func (e *Engine) MustDrawOrPass() bool {
	return e.drawn >= 0
}

func (e *Engine) play(seat int, m Play) (games.Outcome, error) {
	p := e.players[seat]
	if m.Index < 0 || m.Index >= len(p.Hand) {
		return games.Outcome{}, games.ErrIllegalMove
	}
	if e.drawn >= 0 && m.Index != e.drawn {
		return games.Outcome{}, games.ErrIllegalMove
	}
	card := p.Hand[m.Index]
	if !e.playable(card) {
		return games.Outcome{}, games.ErrIllegalMove
	}
	if card.IsWild() && m.Color != "" && !m.Color.Playable() {
		return games.Outcome{}, games.ErrIllegalMove
	}

	p.Hand = append(p.Hand[:m.Index], p.Hand[m.Index+1:]...)
	e.discard.Push(card)
	e.drawn = -1
	p.CalledUno = m.Uno && len(p.Hand) == 1
	e.last = games.Action{PlayerID: p.ID, Verb: "played", Detail: card.String()}

	if len(p.Hand) == 0 {
		e.finish(seat)
		return e.outcome(), nil
	}

	switch card.Value {
	case ValueSkip:
		e.color = card.Color
		e.advance(2)
	case ValueReverse:
		e.color = card.Color
		if e.activeCount() == 2 {
			e.advance(2)
		} else {
			e.direction = -e.direction
			e.advance(1)
		}
	case ValueDrawTwo:
		e.color = card.Color
		e.pending += 2
		e.advance(1)
	case ValueWild, ValueWildDrawFour:
		if card.Value == ValueWildDrawFour {
			e.pending += 4
		}
		if m.Color == "" {
			e.awaitingColor = true
			break
		}
		e.color = m.Color
		e.last.Detail = fmt.Sprintf("%s (%s)", card.String(), m.Color)
		e.advance(1)
	default:
		e.color = card.Color
		e.advance(1)
	}
	return e.outcome(), nil
}

func (e *Engine) drawMove(seat int) (games.Outcome, error) {
	if e.drawn >= 0 {
		return games.Outcome{}, games.ErrIllegalMove
	}
	p := e.players[seat]

	if e.pending > 0 {
		n := e.pending
		for i := 0; i < n; i++ {
			if err := e.dealTo(p); err != nil {
				return games.Outcome{}, err
			}
		}
		e.pending = 0
		e.last = games.Action{PlayerID: p.ID, Verb: "drew", Detail: fmt.Sprintf("%d cards", n)}
		e.advance(1)
		return e.outcome(), nil
	}

	if err := e.dealTo(p); err != nil {
		return games.Outcome{}, err
	}
	e.last = games.Action{PlayerID: p.ID, Verb: "drew", Detail: "1 card"}
	if e.playable(p.Hand[len(p.Hand)-1]) {
		e.drawn = len(p.Hand) - 1
		return e.outcome(), nil
	}
	e.advance(1)
	return e.outcome(), nil
}

func (e *Engine) pass(seat int) (games.Outcome, error) {
	if e.drawn < 0 {
		return games.Outcome{}, games.ErrIllegalMove
	}
	e.drawn = -1
	e.last = games.Action{PlayerID: e.players[seat].ID, Verb: "passed"}
	e.advance(1)
	return e.outcome(), nil
}

func (e *Engine) chooseColor(seat int, m ChooseColor) (games.Outcome, error) {
	if !m.Color.Playable() {
		return games.Outcome{}, games.ErrIllegalMove
	}
	e.color = m.Color
	e.awaitingColor = false
	e.last = games.Action{PlayerID: e.players[seat].ID, Verb: "chose", Detail: string(m.Color)}
	e.advance(1)
	return e.outcome(), nil
}

func (e *Engine) catch(seat int, m Catch) (games.Outcome, error) {
	target := e.seatOf(m.Target)
	if target < 0 || target == seat || e.players[target].Out {
		return games.Outcome{}, games.ErrIllegalMove
	}
	t := e.players[target]
	if len(t.Hand) != 1 || t.CalledUno {
		return games.Outcome{}, games.ErrIllegalMove
	}
	for i := 0; i < catchPenalty; i++ {
		if err := e.dealTo(t); err != nil {
			return games.Outcome{}, err
		}
	}
	e.last = games.Action{PlayerID: e.players[seat].ID, Verb: "caught", Detail: t.ID}
	return e.outcome(), nil
}

// dealTo moves the top of the draw pile into p's hand, rebuilding the draw
// pile from the discard pile when it runs dry.
func (e *Engine) dealTo(p *Player) error {
	if e.draw.Len() == 0 {
		reclaimed := e.discard.TakeAllButTop()
		if len(reclaimed) == 0 {
			return &games.InvariantError{Kind: games.KindUno, Err: games.ErrDeckExhausted}
		}
		e.draw.Push(reclaimed...)
		e.draw.Shuffle(e.src)
	}
	c, err := e.draw.Draw()
	if err != nil {
		return &games.InvariantError{Kind: games.KindUno, Err: err}
	}
	p.Hand = append(p.Hand, c)
	if len(p.Hand) > 1 {
		p.CalledUno = false
	}
	return nil
}

func (e *Engine) playable(c Card) bool {
	top, ok := e.discard.Peek()
	if !ok {
		return false
	}
	if e.pending > 0 {
		return c.Value == ValueWildDrawFour || (c.Value == ValueDrawTwo && top.Value == ValueDrawTwo)
	}
	if c.IsWild() {
		return true
	}
	return c.Color == e.color || c.Value == top.Value
}

func (e *Engine) advance(steps int) {
	for i := 0; i < steps; i++ {
		if next := e.nextSeat(e.turn); next >= 0 {
			e.turn = next
		}
	}
}

func (e *Engine) nextSeat(from int) int {
	return games.NextSeat(from, e.direction, len(e.players), func(seat int) bool {
		return !e.players[seat].Out
	})
}

func (e *Engine) activeCount() int {
	n := 0
	for _, p := range e.players {
		if !p.Out {
			n++
		}
	}
	return n
}

func (e *Engine) finish(seat int) {
	e.phase = games.PhaseFinished
	e.winner = e.players[seat].ID
	e.pending = 0
	e.awaitingColor = false
	e.drawn = -1
}

func (e *Engine) outcome() games.Outcome {
	out := games.Outcome{Action: e.last, Finished: e.phase == games.PhaseFinished}
	if e.winner != "" {
		out.Winners = []string{e.winner}
	}
	return out
}

func (e *Engine) seatOf(id string) int {
	for i, p := range e.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
