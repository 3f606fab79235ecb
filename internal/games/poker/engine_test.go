package poker

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KirkDiggler/tablebot/internal/deck"
	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/rng"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.engine = New(nil, rng.New(&rng.Config{Seed: 7}))
}

type seat struct {
	id    string
	stack int64
	hole  string
}

// rig seats players with fixed hole cards and stacks, stacks the deck so the
// board comes out in the given order, and posts blinds with dealer on the
// button.
func (s *EngineTestSuite) rig(dealer int, board string, seats ...seat) {
	e := s.engine
	used := make(map[Card]bool)
	e.players = nil
	for _, st := range seats {
		hole := parse(s.T(), st.hole)
		for _, c := range hole {
			used[c] = true
		}
		stack := st.stack
		if stack == 0 {
			stack = e.cfg.StartingStack
		}
		e.players = append(e.players, &Player{ID: st.id, Hole: hole, Stack: stack, BuyIn: stack})
	}
	boardCards := parse(s.T(), board)
	for _, c := range boardCards {
		used[c] = true
	}
	var rest []Card
	for _, c := range NewDeck() {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	for i := len(boardCards) - 1; i >= 0; i-- {
		rest = append(rest, boardCards[i])
	}
	e.deck = deck.New(rest)
	e.dealer = dealer
	e.phase = games.PhaseActive
	e.beginHand()
}

func (s *EngineTestSuite) cards() int {
	n := s.engine.deck.Len() + len(s.engine.board)
	for _, p := range s.engine.players {
		n += len(p.Hole)
	}
	return n
}

func (s *EngineTestSuite) chips() int64 {
	var n int64
	for _, p := range s.engine.players {
		n += p.Stack
	}
	return n + s.engine.Pot()
}

func (s *EngineTestSuite) dump() string {
	e := s.engine
	players := make([]Player, len(e.players))
	for i, p := range e.players {
		players[i] = *p
	}
	state := struct {
		Phase      games.Phase
		Players    []Player
		Deck       []Card
		Board      []Card
		Street     Street
		Dealer     int
		Turn       int
		CurrentBet int64
		MinRaise   int64
		Pots       []Pot
		Winners    []string
		Last       games.Action
	}{
		Phase: e.phase, Players: players, Deck: e.deck.Cards(), Board: e.board, Street: e.street,
		Dealer: e.dealer, Turn: e.turn, CurrentBet: e.currentBet, MinRaise: e.minRaise,
		Pots: e.pots, Winners: e.winners, Last: e.last,
	}
	b, err := json.Marshal(state)
	s.Require().NoError(err)
	return string(b)
}

func (s *EngineTestSuite) requireRejected(playerID string, move games.Move, expected games.Rejection) {
	before := s.dump()
	_, err := s.engine.Apply(playerID, move)
	s.Require().ErrorIs(err, expected)
	s.Equal(before, s.dump(), "rejected move must not change state")
}

func (s *EngineTestSuite) act(playerID string, move games.Move) games.Outcome {
	out, err := s.engine.Apply(playerID, move)
	s.Require().NoError(err)
	return out
}

func (s *EngineTestSuite) TestLobby() {
	s.True(s.engine.AddPlayer("alice"))
	s.False(s.engine.AddPlayer("alice"))
	s.True(s.engine.AddPlayer("bob"))
	s.True(s.engine.RemovePlayer("bob"))
	s.False(s.engine.Start())
	s.Equal(games.PhaseLobby, s.engine.Phase())

	s.engine = New(&Config{MaxPlayers: 2}, nil)
	s.True(s.engine.AddPlayer("a"))
	s.True(s.engine.AddPlayer("b"))
	s.False(s.engine.AddPlayer("c"))
}

func (s *EngineTestSuite) TestStartDealsAndPostsBlinds() {
	for _, id := range []string{"a", "b", "c"} {
		s.Require().True(s.engine.AddPlayer(id))
	}
	s.Require().True(s.engine.Start())

	s.Equal(games.PhaseActive, s.engine.Phase())
	s.Equal(StreetPreflop, s.engine.Street())
	for _, id := range []string{"a", "b", "c"} {
		s.Len(s.engine.Hand(id), 2)
	}
	s.Equal(DeckSize, s.cards())
	s.Equal(DeckSize-6, s.engine.deck.Len())
	s.Equal(int64(15), s.engine.Pot())
	s.Equal(int64(3000), s.chips())

	// Three handed, the player after the big blind opens, which is the dealer.
	s.Equal(s.engine.players[s.engine.dealer].ID, s.engine.CurrentPlayer())
	s.False(s.engine.AddPlayer("d"))
	s.False(s.engine.RemovePlayer("a"))
	s.False(s.engine.Start())
}

func (s *EngineTestSuite) TestHeadsUpDealerPostsSmallBlindAndActsFirst() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	s.Equal(int64(5), s.engine.players[0].Bet)
	s.Equal(int64(10), s.engine.players[1].Bet)
	s.Equal("a", s.engine.CurrentPlayer())

	s.act("a", Call{})
	s.Equal("b", s.engine.CurrentPlayer())
	s.act("b", Check{})

	s.Equal(StreetFlop, s.engine.Street())
	s.Equal(parse(s.T(), "2c 7d 9c"), s.engine.board)
	s.Equal("b", s.engine.CurrentPlayer(), "non-dealer acts first after the flop")

	s.act("b", Check{})
	s.Equal("a", s.engine.CurrentPlayer())
	s.act("a", Check{})
	s.Equal(StreetTurn, s.engine.Street())
	s.Equal(DeckSize, s.cards())
}

func (s *EngineTestSuite) TestRejectedMovesLeaveStateUntouched() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	s.requireRejected("b", Check{}, games.ErrNotYourTurn)
	s.requireRejected("a", Check{}, games.ErrIllegalMove)
	s.requireRejected("a", Raise{Amount: 5}, games.ErrIllegalMove)
	s.requireRejected("a", Raise{Amount: 5000}, games.ErrInsufficientChips)
	s.requireRejected("zed", Fold{}, games.ErrNotInGame)
	s.requireRejected("a", nil, games.ErrUnknownMove)

	s.act("a", Call{})
	s.requireRejected("b", Call{}, games.ErrIllegalMove)
}

func (s *EngineTestSuite) TestHugeRaiseIsRejected() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	s.requireRejected("a", Raise{Amount: math.MaxInt64}, games.ErrInsufficientChips)
	s.requireRejected("a", Raise{Amount: math.MaxInt64 - 4}, games.ErrInsufficientChips)

	s.Equal(int64(995), s.engine.players[0].Stack)
	s.Equal(int64(10), s.engine.currentBet)
	s.Equal(int64(2000), s.chips())

	// The largest legal raise still goes through
	s.act("a", Raise{Amount: 990})
	s.True(s.engine.players[0].AllIn)
	s.Equal(int64(2000), s.chips())
}

func (s *EngineTestSuite) TestPostIgnoresNegativeAmounts() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})
	p := s.engine.players[0]

	s.Zero(s.engine.post(p, -50))
	s.Equal(int64(995), p.Stack)
	s.Equal(int64(5), p.Bet)
}

func (s *EngineTestSuite) TestMinimumRaiseFollowsLastRaise() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	s.act("a", Raise{Amount: 30})
	s.Equal(int64(40), s.engine.currentBet)
	s.Equal("b", s.engine.CurrentPlayer())

	s.requireRejected("b", Raise{Amount: 20}, games.ErrIllegalMove)
	opts, ok := s.engine.Options("b")
	s.Require().True(ok)
	s.Equal(int64(30), opts.ToCall)
	s.Equal(int64(30), opts.MinRaise)
	s.False(opts.CanCheck)

	s.act("b", Raise{Amount: 30})
	s.Equal(int64(70), s.engine.currentBet)
	s.Equal("a", s.engine.CurrentPlayer())
	s.Equal(StreetPreflop, s.engine.Street())
}

func (s *EngineTestSuite) TestAllInShowdownSoleWinner() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	s.act("a", AllIn{})
	s.Equal("b", s.engine.CurrentPlayer())
	out := s.act("b", Call{})

	s.True(out.Finished)
	s.Equal([]string{"a"}, out.Winners)
	s.Equal(games.PhaseFinished, s.engine.Phase())
	s.Len(s.engine.board, 5)
	s.Equal(DeckSize, s.cards())
	s.Equal(int64(2000), s.engine.players[0].Stack)
	s.Equal(int64(0), s.engine.players[1].Stack)

	s.Equal([]games.Result{
		{PlayerID: "a", Won: true, Score: 1000},
		{PlayerID: "b", Won: false, Score: -1000},
	}, s.engine.Results())

	snap := s.engine.Snapshot().(Snapshot)
	s.Equal("One Pair", snap.Players[0].HandName)
	s.Len(snap.Players[1].Hole, 2)

	s.requireRejected("b", Check{}, games.ErrGameNotActive)
	s.requireRejected("a", Fold{}, games.ErrGameNotActive)
}

func (s *EngineTestSuite) TestSplitPotGivesOddChipClockwiseFromDealer() {
	s.rig(0, "Qs Jh Tc 4d 3h",
		seat{id: "a", hole: "Ac Kd"},
		seat{id: "b", hole: "2h 7s"},
		seat{id: "c", hole: "Ad Kc"},
	)

	s.Equal("a", s.engine.CurrentPlayer())
	s.act("a", Call{})
	s.act("b", Fold{})
	s.act("c", Check{})
	s.Equal(StreetFlop, s.engine.Street())
	s.Equal(int64(25), s.engine.Pot())

	for s.engine.Phase() == games.PhaseActive {
		s.act(s.engine.CurrentPlayer(), Check{})
	}

	s.ElementsMatch([]string{"c", "a"}, s.engine.winners)
	s.Equal([]string{"c", "a"}, s.engine.pots[0].Winners)
	s.Equal(int64(1002), s.engine.players[0].Stack)
	s.Equal(int64(995), s.engine.players[1].Stack)
	s.Equal(int64(1003), s.engine.players[2].Stack)
	s.Equal(int64(3000), s.chips())

	results := s.engine.Results()
	s.True(results[0].Won)
	s.False(results[1].Won)
	s.True(results[2].Won)
}

func (s *EngineTestSuite) TestEvenSplit() {
	s.rig(1, "Qs Jh Tc 4d 3h", seat{id: "a", hole: "Ac Kd"}, seat{id: "b", hole: "Ad Kc"})

	s.act("b", AllIn{})
	out := s.act("a", Call{})

	s.True(out.Finished)
	s.ElementsMatch([]string{"a", "b"}, out.Winners)
	s.Equal(int64(1000), s.engine.players[0].Stack)
	s.Equal(int64(1000), s.engine.players[1].Stack)
}

func (s *EngineTestSuite) TestSidePots() {
	s.rig(0, "2c 7d 9c Jd 3s",
		seat{id: "a", stack: 100, hole: "As Ah"},
		seat{id: "b", stack: 300, hole: "Ks Kh"},
		seat{id: "c", stack: 1000, hole: "Qs Qh"},
	)

	s.act("a", AllIn{})
	s.act("b", AllIn{})
	out := s.act("c", Call{})

	s.True(out.Finished)
	s.Equal([]string{"a"}, out.Winners)
	s.Require().Len(s.engine.pots, 2)
	s.Equal(int64(300), s.engine.pots[0].Amount)
	s.Equal([]string{"a", "b", "c"}, s.engine.pots[0].Eligible)
	s.Equal(int64(400), s.engine.pots[1].Amount)
	s.Equal([]string{"b", "c"}, s.engine.pots[1].Eligible)
	s.Equal([]string{"b"}, s.engine.pots[1].Winners)

	s.Equal(int64(300), s.engine.players[0].Stack)
	s.Equal(int64(400), s.engine.players[1].Stack)
	s.Equal(int64(700), s.engine.players[2].Stack)

	s.Equal([]games.Result{
		{PlayerID: "a", Won: true, Score: 200},
		{PlayerID: "b", Won: false, Score: 100},
		{PlayerID: "c", Won: false, Score: -300},
	}, s.engine.Results())
}

func (s *EngineTestSuite) TestFoldToOne() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	out := s.act("a", Fold{})
	s.True(out.Finished)
	s.Equal([]string{"b"}, out.Winners)
	s.Empty(s.engine.board)
	s.Equal(int64(995), s.engine.players[0].Stack)
	s.Equal(int64(1005), s.engine.players[1].Stack)
	s.requireRejected("b", Check{}, games.ErrGameNotActive)
}

func (s *EngineTestSuite) TestForfeit() {
	s.rig(0, "2c 7d 9c Jd 3s",
		seat{id: "a", hole: "As Ah"},
		seat{id: "b", hole: "Ks Kh"},
		seat{id: "c", hole: "Qs Qh"},
	)

	out, err := s.engine.Forfeit("b")
	s.Require().NoError(err)
	s.False(out.Finished)
	s.Equal("a", s.engine.CurrentPlayer(), "an off-turn forfeit keeps the turn")

	_, err = s.engine.Forfeit("b")
	s.ErrorIs(err, games.ErrNotInGame)
	s.requireRejected("b", Fold{}, games.ErrNotInGame)

	out = s.act("a", Fold{})
	s.True(out.Finished)
	s.Equal([]string{"c"}, out.Winners)
	s.Equal(int64(3000), s.chips())
}

func (s *EngineTestSuite) TestForfeitOnTurnHeadsUp() {
	s.rig(0, "2c 7d 9c Jd 3s", seat{id: "a", hole: "As Ah"}, seat{id: "b", hole: "Ks Kh"})

	out, err := s.engine.Forfeit("a")
	s.Require().NoError(err)
	s.True(out.Finished)
	s.Equal([]string{"b"}, out.Winners)
}

func (s *EngineTestSuite) TestConservationOverSeededHands() {
	for seed := int64(1); seed <= 25; seed++ {
		s.engine = New(nil, rng.New(&rng.Config{Seed: seed}))
		for _, id := range []string{"a", "b", "c", "d"} {
			s.Require().True(s.engine.AddPlayer(id))
		}
		s.Require().True(s.engine.Start())

		for steps := 0; s.engine.Phase() == games.PhaseActive; steps++ {
			s.Require().Less(steps, 100, "hand must terminate")
			id := s.engine.CurrentPlayer()
			opts, ok := s.engine.Options(id)
			s.Require().True(ok)

			var move games.Move = Call{}
			switch {
			case steps == 0:
				move = Raise{Amount: opts.MinRaise}
			case opts.CanCheck:
				move = Check{}
			}
			s.act(id, move)
			s.Equal(DeckSize, s.cards())
			s.Equal(int64(4000), s.chips())
		}
		s.Len(s.engine.board, 5)
		s.NotEmpty(s.engine.Results())
	}
}
