// Package poker implements a single hand of no-limit Texas Hold'em.
package poker

import (
	"fmt"
	"sort"

	"github.com/KirkDiggler/tablebot/internal/deck"
	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/rng"
)

const (
	defaultMinPlayers    = 2
	defaultMaxPlayers    = 8
	defaultStartingStack = 1000
	defaultSmallBlind    = 5
	defaultBigBlind      = 10
)

// Street is a betting round
type Street string

const (
	StreetPreflop  Street = "preflop"
	StreetFlop     Street = "flop"
	StreetTurn     Street = "turn"
	StreetRiver    Street = "river"
	StreetShowdown Street = "showdown"
)

// Config holds table limits and stakes
type Config struct {
	MinPlayers    int
	MaxPlayers    int
	StartingStack int64
	SmallBlind    int64
	BigBlind      int64
}

// Player is one seat at the table
type Player struct {
	ID        string
	Hole      []Card
	Stack     int64
	BuyIn     int64
	Bet       int64 // chips put in on the current street
	Committed int64 // chips put in over the whole hand
	Folded    bool
	AllIn     bool
	Acted     bool
	Out       bool
	Hand      *HandValue
}

// Pot is a settled pot and who took it
type Pot struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
	Winners  []string `json:"winners"`
}

// Engine is a Hold'em table playing one hand
type Engine struct {
	cfg Config
	src rng.Source

	phase   games.Phase
	players []*Player

	deck  *deck.Pile[Card]
	board []Card

	street     Street
	dealer     int
	turn       int
	currentBet int64
	minRaise   int64

	pots    []Pot
	winners []string
	last    games.Action
}

var _ games.Engine = (*Engine)(nil)

// New creates a table in the lobby phase
func New(cfg *Config, src rng.Source) *Engine {
	c := Config{
		MinPlayers:    defaultMinPlayers,
		MaxPlayers:    defaultMaxPlayers,
		StartingStack: defaultStartingStack,
		SmallBlind:    defaultSmallBlind,
		BigBlind:      defaultBigBlind,
	}
	if cfg != nil {
		if cfg.MinPlayers > 0 {
			c.MinPlayers = cfg.MinPlayers
		}
		if cfg.MaxPlayers > 0 {
			c.MaxPlayers = cfg.MaxPlayers
		}
		if cfg.StartingStack > 0 {
			c.StartingStack = cfg.StartingStack
		}
		if cfg.SmallBlind > 0 {
			c.SmallBlind = cfg.SmallBlind
		}
		if cfg.BigBlind > 0 {
			c.BigBlind = cfg.BigBlind
		}
	}
	if c.BigBlind < c.SmallBlind {
		c.BigBlind = c.SmallBlind
	}
	if src == nil {
		src = rng.New(nil)
	}

	return &Engine{
		cfg:   c,
		src:   src,
		phase: games.PhaseLobby,
		deck:  deck.New[Card](nil),
	}
}

func (e *Engine) Kind() games.Kind   { return games.KindPoker }
func (e *Engine) Phase() games.Phase { return e.phase }

// Street returns the current betting round
func (e *Engine) Street() Street { return e.street }

func (e *Engine) AddPlayer(id string) bool {
	if e.phase != games.PhaseLobby || id == "" || e.seatOf(id) >= 0 || len(e.players) >= e.cfg.MaxPlayers {
		return false
	}
	e.players = append(e.players, &Player{ID: id, Stack: e.cfg.StartingStack, BuyIn: e.cfg.StartingStack})
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

// Start shuffles, picks the dealer button, deals hole cards and posts blinds
func (e *Engine) Start() bool {
	if e.phase != games.PhaseLobby || len(e.players) < e.cfg.MinPlayers {
		return false
	}
	e.phase = games.PhaseDealing

	e.deck = deck.New(NewDeck())
	e.deck.Shuffle(e.src)
	e.dealer = e.src.Intn(len(e.players))

	for round := 0; round < 2; round++ {
		for i := range e.players {
			p := e.players[(e.dealer+1+i)%len(e.players)]
			c, _ := e.deck.Draw()
			p.Hole = append(p.Hole, c)
		}
	}

	e.phase = games.PhaseActive
	e.beginHand()
	return true
}

// beginHand posts the blinds and hands the action to the first player
func (e *Engine) beginHand() {
	e.street = StreetPreflop
	e.minRaise = e.cfg.BigBlind

	sb := e.nextSeat(e.dealer)
	if len(e.players) == 2 {
		sb = e.dealer
	}
	bb := e.nextSeat(sb)
	e.post(e.players[sb], e.cfg.SmallBlind)
	e.post(e.players[bb], e.cfg.BigBlind)
	e.currentBet = max(e.players[sb].Bet, e.players[bb].Bet)

	e.last = games.Action{
		Verb:   "started",
		Detail: fmt.Sprintf("blinds %d/%d, %s deals", e.cfg.SmallBlind, e.cfg.BigBlind, e.players[e.dealer].ID),
	}
	e.turn = bb
	e.progress(bb)
}

func (e *Engine) Apply(playerID string, move games.Move) (games.Outcome, error) {
	if e.phase != games.PhaseActive {
		return games.Outcome{}, games.ErrGameNotActive
	}
	seat := e.seatOf(playerID)
	if seat < 0 || e.players[seat].Out {
		return games.Outcome{}, games.ErrNotInGame
	}
	if seat != e.turn {
		return games.Outcome{}, games.ErrNotYourTurn
	}
	p := e.players[seat]
	owed := e.currentBet - p.Bet

	switch m := move.(type) {
	case Fold:
		p.Folded = true
		e.last = games.Action{PlayerID: p.ID, Verb: "folded"}
	case Check:
		if owed > 0 {
			return games.Outcome{}, games.ErrIllegalMove
		}
		e.last = games.Action{PlayerID: p.ID, Verb: "checked"}
	case Call:
		if owed <= 0 {
			return games.Outcome{}, games.ErrIllegalMove
		}
		paid := e.post(p, owed)
		e.last = games.Action{PlayerID: p.ID, Verb: "called", Detail: fmt.Sprintf("%d", paid)}
		if p.AllIn {
			e.last.Detail += " (all-in)"
		}
	case Raise:
		if m.Amount < e.minRaise || e.othersToAct(seat) == 0 {
			return games.Outcome{}, games.ErrIllegalMove
		}
		if m.Amount > p.Stack-owed {
			return games.Outcome{}, games.ErrInsufficientChips
		}
		e.post(p, owed+m.Amount)
		e.raiseTo(seat, p.Bet)
		e.last = games.Action{PlayerID: p.ID, Verb: "raised", Detail: fmt.Sprintf("to %d", p.Bet)}
	case AllIn:
		e.post(p, p.Stack)
		if p.Bet > e.currentBet {
			e.raiseTo(seat, p.Bet)
		}
		e.last = games.Action{PlayerID: p.ID, Verb: "went all-in", Detail: fmt.Sprintf("%d", p.Bet)}
	default:
		return games.Outcome{}, games.ErrUnknownMove
	}

	p.Acted = true
	e.progress(seat)
	return e.outcome(), nil
}

// Forfeit folds a leaving player and sits them out for the rest of the hand
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
	p.Folded = true
	p.Acted = true
	e.last = games.Action{PlayerID: p.ID, Verb: "forfeited"}

	if seat == e.turn || e.contenders() == 1 {
		e.progress(seat)
	}
	return e.outcome(), nil
}

func (e *Engine) CurrentPlayer() string {
	if e.phase != games.PhaseActive {
		return ""
	}
	return e.players[e.turn].ID
}

// Results scores every player with their net chip change
func (e *Engine) Results() []games.Result {
	if e.phase != games.PhaseFinished {
		return nil
	}
	won := make(map[string]bool, len(e.winners))
	for _, id := range e.winners {
		won[id] = true
	}
	results := make([]games.Result, 0, len(e.players))
	for _, p := range e.players {
		results = append(results, games.Result{
			PlayerID: p.ID,
			Won:      won[p.ID],
			Score:    p.Stack - p.BuyIn,
		})
	}
	return results
}

// Hand returns a copy of a player's hole cards
func (e *Engine) Hand(playerID string) []Card {
	seat := e.seatOf(playerID)
	if seat < 0 {
		return nil
	}
	out := make([]Card, len(e.players[seat].Hole))
	copy(out, e.players[seat].Hole)
	return out
}

// Board returns a copy of the community cards dealt so far
func (e *Engine) Board() []Card {
	return append([]Card{}, e.board...)
}

// HandName names the best hand playerID can make with the board, or "" before
// the flop
func (e *Engine) HandName(playerID string) string {
	seat := e.seatOf(playerID)
	if seat < 0 || len(e.board) < 3 {
		return ""
	}
	cards := append(e.Hand(playerID), e.board...)
	v := Evaluate(cards)
	return v.Name()
}

// Options describes what the player on turn may do
type Options struct {
	ToCall   int64 `json:"to_call"`
	CanCheck bool  `json:"can_check"`
	CanRaise bool  `json:"can_raise"`
	MinRaise int64 `json:"min_raise"`
	Stack    int64 `json:"stack"`
}

// Options returns the betting options for playerID, or false when it is not
// their turn
func (e *Engine) Options(playerID string) (Options, bool) {
	seat := e.seatOf(playerID)
	if e.phase != games.PhaseActive || seat != e.turn {
		return Options{}, false
	}
	p := e.players[seat]
	owed := e.currentBet - p.Bet
	return Options{
		ToCall:   owed,
		CanCheck: owed == 0,
		CanRaise: e.othersToAct(seat) > 0 && owed+e.minRaise <= p.Stack,
		MinRaise: e.minRaise,
		Stack:    p.Stack,
	}, true
}

// Pot returns the chips committed and not yet paid out
func (e *Engine) Pot() int64 {
	if e.phase == games.PhaseFinished {
		return 0
	}
	var total int64
	for _, p := range e.players {
		total += p.Committed
	}
	return total
}

// post moves up to amount chips from p's stack into the pot and returns the
// chips actually moved
func (e *Engine) post(p *Player, amount int64) int64 {
	if amount < 0 {
		amount = 0
	}
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.Bet += amount
	p.Committed += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
	return amount
}

// raiseTo lifts the current bet. A full raise reopens the action for every
// other player; a short all-in only obliges them to match it.
func (e *Engine) raiseTo(seat int, bet int64) {
	by := bet - e.currentBet
	e.currentBet = bet
	if by < e.minRaise {
		return
	}
	e.minRaise = by
	for i, p := range e.players {
		if i != seat {
			p.Acted = false
		}
	}
}

// progress runs after every accepted action: it ends the hand, closes the
// street or passes the turn
func (e *Engine) progress(seat int) {
	if e.contenders() == 1 {
		e.awardUncontested()
		return
	}
	if !e.roundClosed() {
		e.turn = e.nextToAct(seat)
		return
	}
	for {
		e.nextStreet()
		if e.street == StreetShowdown {
			e.showdown()
			return
		}
		if e.actors() > 1 {
			e.turn = e.nextToAct(e.dealer)
			return
		}
	}
}

func (e *Engine) roundClosed() bool {
	actors := 0
	var lone *Player
	for _, p := range e.players {
		if !p.canAct() {
			continue
		}
		actors++
		lone = p
	}
	switch actors {
	case 0:
		return true
	case 1:
		// Nobody is left to bet against once the lone actor has matched.
		if lone.Bet >= e.currentBet {
			return true
		}
	}
	for _, p := range e.players {
		if p.canAct() && (!p.Acted || p.Bet != e.currentBet) {
			return false
		}
	}
	return true
}

func (e *Engine) nextStreet() {
	for _, p := range e.players {
		p.Bet = 0
		p.Acted = false
	}
	e.currentBet = 0
	e.minRaise = e.cfg.BigBlind

	switch e.street {
	case StreetPreflop:
		e.street = StreetFlop
		e.reveal(3)
	case StreetFlop:
		e.street = StreetTurn
		e.reveal(1)
	case StreetTurn:
		e.street = StreetRiver
		e.reveal(1)
	default:
		e.street = StreetShowdown
	}
}

func (e *Engine) reveal(n int) {
	for i := 0; i < n; i++ {
		// 52 cards cover eight players and a full board.
		c, err := e.deck.Draw()
		if err != nil {
			return
		}
		e.board = append(e.board, c)
	}
}

// showdown splits the committed chips into side pots by commitment level and
// pays each pot to the best hand among the players eligible for it
func (e *Engine) showdown() {
	for _, p := range e.players {
		if p.Folded {
			continue
		}
		cards := append(append([]Card{}, p.Hole...), e.board...)
		v := Evaluate(cards)
		p.Hand = &v
	}

	var levels []int64
	seen := make(map[int64]bool)
	for _, p := range e.players {
		if !p.Folded && !seen[p.Committed] {
			seen[p.Committed] = true
			levels = append(levels, p.Committed)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	e.pots = nil
	var prev int64
	for _, level := range levels {
		pot := Pot{}
		for _, p := range e.players {
			pot.Amount += clamp(p.Committed, prev, level)
			if !p.Folded && p.Committed >= level {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		e.pots = append(e.pots, pot)
		prev = level
	}
	// Chips a folded player put in above the top live commitment go to the last pot.
	for _, p := range e.players {
		if p.Committed > prev {
			e.pots[len(e.pots)-1].Amount += p.Committed - prev
		}
	}

	for i := range e.pots {
		e.pay(&e.pots[i])
	}
	e.winners = e.pots[0].Winners
	e.finish()
}

// pay awards a pot to its best eligible hands. An odd chip goes to the first
// winner clockwise from the dealer.
func (e *Engine) pay(pot *Pot) {
	var best *HandValue
	var seats []int
	for i := range e.players {
		seat := (e.dealer + 1 + i) % len(e.players)
		p := e.players[seat]
		if p.Folded || !contains(pot.Eligible, p.ID) {
			continue
		}
		switch {
		case best == nil || p.Hand.Compare(*best) > 0:
			best = p.Hand
			seats = []int{seat}
		case p.Hand.Compare(*best) == 0:
			seats = append(seats, seat)
		}
	}
	if len(seats) == 0 {
		return
	}
	share := pot.Amount / int64(len(seats))
	remainder := pot.Amount % int64(len(seats))
	for i, seat := range seats {
		won := share
		if i == 0 {
			won += remainder
		}
		e.players[seat].Stack += won
		pot.Winners = append(pot.Winners, e.players[seat].ID)
	}
}

func (e *Engine) awardUncontested() {
	var total int64
	for _, p := range e.players {
		total += p.Committed
	}
	for _, p := range e.players {
		if p.Folded {
			continue
		}
		p.Stack += total
		e.pots = []Pot{{Amount: total, Eligible: []string{p.ID}, Winners: []string{p.ID}}}
		e.winners = []string{p.ID}
	}
	e.finish()
}

func (e *Engine) finish() {
	e.phase = games.PhaseFinished
	e.street = StreetShowdown
	for _, p := range e.players {
		p.Bet = 0
	}
	e.currentBet = 0
}

func (e *Engine) outcome() games.Outcome {
	out := games.Outcome{Action: e.last, Finished: e.phase == games.PhaseFinished}
	if out.Finished {
		out.Winners = append([]string(nil), e.winners...)
	}
	return out
}

func (e *Engine) nextToAct(from int) int {
	seat := games.NextSeat(from, 1, len(e.players), func(seat int) bool {
		return e.players[seat].canAct()
	})
	if seat < 0 {
		return from
	}
	return seat
}

func (e *Engine) nextSeat(from int) int {
	return (from + 1) % len(e.players)
}

// contenders counts players still holding cards
func (e *Engine) contenders() int {
	n := 0
	for _, p := range e.players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// actors counts players who can still bet
func (e *Engine) actors() int {
	n := 0
	for _, p := range e.players {
		if p.canAct() {
			n++
		}
	}
	return n
}

func (e *Engine) othersToAct(seat int) int {
	n := 0
	for i, p := range e.players {
		if i != seat && p.canAct() {
			n++
		}
	}
	return n
}

func (e *Engine) seatOf(id string) int {
	for i, p := range e.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) canAct() bool {
	return !p.Folded && !p.AllIn
}

func clamp(v, lo, hi int64) int64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return hi - lo
	}
	return v - lo
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
