package uno

import (
	"encoding/json"
	"errors"
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
	s.engine = New(nil, rng.New(&rng.Config{Seed: 1}))
}

// seat puts the engine straight into an active game with the given hands,
// discard top and draw pile. Seat 0 is on turn.
func (s *EngineTestSuite) seat(hands map[string][]Card, order []string, top Card, drawPile []Card) {
	e := s.engine
	e.players = nil
	for _, id := range order {
		hand := make([]Card, len(hands[id]))
		copy(hand, hands[id])
		e.players = append(e.players, &Player{ID: id, Hand: hand})
	}
	e.discard = deck.New([]Card{top})
	e.draw = deck.New(drawPile)
	e.color = top.Color
	e.turn = 0
	e.direction = 1
	e.phase = games.PhaseActive
}

func (s *EngineTestSuite) total() int {
	n := s.engine.draw.Len() + s.engine.discard.Len()
	for _, p := range s.engine.players {
		n += len(p.Hand)
	}
	return n
}

func (s *EngineTestSuite) dump() string {
	e := s.engine
	type seat struct {
		ID        string
		Hand      []Card
		Out       bool
		CalledUno bool
	}
	state := struct {
		Phase     games.Phase
		Seats     []seat
		Draw      []Card
		Discard   []Card
		Turn      int
		Direction int
		Color     Color
		Pending   int
		Awaiting  bool
		Drawn     int
		Winner    string
		Last      games.Action
	}{
		Phase: e.phase, Draw: e.draw.Cards(), Discard: e.discard.Cards(), Turn: e.turn,
		Direction: e.direction, Color: e.color, Pending: e.pending, Awaiting: e.awaitingColor,
		Drawn: e.drawn, Winner: e.winner, Last: e.last,
	}
	for _, p := range e.players {
		state.Seats = append(state.Seats, seat{ID: p.ID, Hand: p.Hand, Out: p.Out, CalledUno: p.CalledUno})
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

var (
	red3   = Card{Color: ColorRed, Value: "3"}
	red5   = Card{Color: ColorRed, Value: "5"}
	red9   = Card{Color: ColorRed, Value: "9"}
	blue1  = Card{Color: ColorBlue, Value: "1"}
	blue2  = Card{Color: ColorBlue, Value: "2"}
	blue3  = Card{Color: ColorBlue, Value: "3"}
	green7 = Card{Color: ColorGreen, Value: "7"}
	yel4   = Card{Color: ColorYellow, Value: "4"}

	redSkip    = Card{Color: ColorRed, Value: ValueSkip}
	redReverse = Card{Color: ColorRed, Value: ValueReverse}
	redDraw2   = Card{Color: ColorRed, Value: ValueDrawTwo}
	blueDraw2  = Card{Color: ColorBlue, Value: ValueDrawTwo}
	wild       = Card{Color: ColorWild, Value: ValueWild}
	wildDraw4  = Card{Color: ColorWild, Value: ValueWildDrawFour}
)

func (s *EngineTestSuite) TestNewDeckComposition() {
	cards := NewDeck()
	s.Len(cards, DeckSize)

	byColor := make(map[Color]int)
	byValue := make(map[Value]int)
	for _, c := range cards {
		byColor[c.Color]++
		byValue[c.Value]++
	}
	for _, color := range Colors {
		s.Equal(25, byColor[color], string(color))
	}
	s.Equal(8, byColor[ColorWild])
	s.Equal(4, byValue["0"])
	s.Equal(8, byValue["7"])
	s.Equal(8, byValue[ValueSkip])
	s.Equal(4, byValue[ValueWildDrawFour])
}

func (s *EngineTestSuite) TestLobby() {
	s.True(s.engine.AddPlayer("alice"))
	s.False(s.engine.AddPlayer("alice"), "duplicate id")
	s.False(s.engine.AddPlayer(""), "empty id")
	s.True(s.engine.AddPlayer("bob"))
	s.True(s.engine.RemovePlayer("bob"))
	s.False(s.engine.RemovePlayer("bob"))
	s.Equal([]string{"alice"}, s.engine.Players())

	s.False(s.engine.Start(), "one player is not enough")
	s.Equal(games.PhaseLobby, s.engine.Phase())
}

func (s *EngineTestSuite) TestAddPlayerRespectsMax() {
	s.engine = New(&Config{MaxPlayers: 2}, rng.New(&rng.Config{Seed: 1}))
	s.True(s.engine.AddPlayer("a"))
	s.True(s.engine.AddPlayer("b"))
	s.False(s.engine.AddPlayer("c"))
}

func (s *EngineTestSuite) TestStartDeals() {
	for _, id := range []string{"a", "b", "c"} {
		s.Require().True(s.engine.AddPlayer(id))
	}
	s.Require().True(s.engine.Start())

	s.Equal(games.PhaseActive, s.engine.Phase())
	for _, id := range []string{"a", "b", "c"} {
		s.Len(s.engine.Hand(id), 7)
	}
	top, ok := s.engine.discard.Peek()
	s.Require().True(ok)
	s.True(top.IsNumber())
	s.Equal(top.Color, s.engine.color)
	s.Equal(DeckSize, s.total())
	s.NotEmpty(s.engine.CurrentPlayer())

	s.False(s.engine.AddPlayer("d"), "no joins after start")
	s.False(s.engine.RemovePlayer("a"), "no leaves after start")
	s.False(s.engine.Start(), "start twice")
}

func (s *EngineTestSuite) TestOnlyMatchingCardWins() {
	s.seat(map[string][]Card{
		"a": {red5},
		"b": {blue1, blue2},
	}, []string{"a", "b"}, red3, []Card{green7})

	out, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)

	s.True(out.Finished)
	s.Equal([]string{"a"}, out.Winners)
	s.Equal(games.PhaseFinished, s.engine.Phase())
	s.Equal("", s.engine.CurrentPlayer())

	s.requireRejected("b", Draw{}, games.ErrGameNotActive)
	s.requireRejected("a", Draw{}, games.ErrGameNotActive)

	results := s.engine.Results()
	s.Require().Len(results, 2)
	s.Equal(games.Result{PlayerID: "a", Won: true, Score: 3}, results[0])
	s.Equal(games.Result{PlayerID: "b", Won: false}, results[1])
}

func (s *EngineTestSuite) TestRejectedMovesLeaveStateUntouched() {
	s.seat(map[string][]Card{
		"a": {blue1, red5},
		"b": {blue2, blue3},
	}, []string{"a", "b"}, red3, []Card{green7})

	s.requireRejected("b", Play{Index: 0}, games.ErrNotYourTurn)
	s.requireRejected("a", Play{Index: 0}, games.ErrIllegalMove)
	s.requireRejected("a", Play{Index: 5}, games.ErrIllegalMove)
	s.requireRejected("a", Pass{}, games.ErrIllegalMove)
	s.requireRejected("a", ChooseColor{Color: ColorBlue}, games.ErrIllegalMove)
	s.requireRejected("zed", Play{Index: 0}, games.ErrNotInGame)
	s.requireRejected("a", nil, games.ErrUnknownMove)
}

func (s *EngineTestSuite) TestNumberCardTogglesTurnHeadsUp() {
	s.seat(map[string][]Card{
		"a": {red5, red9},
		"b": {blue3, red9, blue1},
	}, []string{"a", "b"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal("b", s.engine.CurrentPlayer())

	_, err = s.engine.Apply("b", Play{Index: 1})
	s.Require().NoError(err)
	s.Equal("a", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestSkip() {
	s.seat(map[string][]Card{
		"a": {redSkip, red5},
		"b": {blue1},
		"c": {blue2},
	}, []string{"a", "b", "c"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal("c", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestReverse() {
	s.seat(map[string][]Card{
		"a": {redReverse, red5},
		"b": {blue1},
		"c": {blue2},
	}, []string{"a", "b", "c"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal(-1, s.engine.direction)
	s.Equal("c", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestReverseHeadsUpActsAsSkip() {
	s.seat(map[string][]Card{
		"a": {redReverse, red5},
		"b": {blue1},
	}, []string{"a", "b"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal(1, s.engine.direction)
	s.Equal("a", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestDrawTwoStacksAndResolves() {
	s.seat(map[string][]Card{
		"a": {redDraw2, red5},
		"b": {blueDraw2, blue1},
	}, []string{"a", "b"}, red3, []Card{yel4, yel4, green7, green7, blue3})

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal(2, s.engine.pending)
	s.Equal("b", s.engine.CurrentPlayer())

	s.requireRejected("b", Play{Index: 1}, games.ErrIllegalMove)

	_, err = s.engine.Apply("b", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal(4, s.engine.pending)
	s.Equal("a", s.engine.CurrentPlayer())

	s.requireRejected("a", Play{Index: 0}, games.ErrIllegalMove)

	out, err := s.engine.Apply("a", Draw{})
	s.Require().NoError(err)
	s.Equal("4 cards", out.Action.Detail)
	s.Equal(0, s.engine.pending)
	s.Len(s.engine.Hand("a"), 5)
	s.Equal("b", s.engine.CurrentPlayer())
	s.Equal(10, s.total())
}

func (s *EngineTestSuite) TestWildDrawFourAnswersAnyPenalty() {
	s.seat(map[string][]Card{
		"a": {redDraw2, red5},
		"b": {wildDraw4, blue1},
	}, []string{"a", "b"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)

	_, err = s.engine.Apply("b", Play{Index: 0, Color: ColorGreen})
	s.Require().NoError(err)
	s.Equal(6, s.engine.pending)
	s.Equal(ColorGreen, s.engine.color)
	s.Equal("a", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestWildColourSubStep() {
	s.seat(map[string][]Card{
		"a": {wild, red5},
		"b": {green7, blue1},
	}, []string{"a", "b"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.True(s.engine.awaitingColor)
	s.Equal("a", s.engine.CurrentPlayer())

	s.requireRejected("a", Play{Index: 0}, games.ErrIllegalMove)
	s.requireRejected("b", ChooseColor{Color: ColorGreen}, games.ErrNotYourTurn)
	s.requireRejected("a", ChooseColor{Color: ColorWild}, games.ErrIllegalMove)

	_, err = s.engine.Apply("a", ChooseColor{Color: ColorGreen})
	s.Require().NoError(err)
	s.False(s.engine.awaitingColor)
	s.Equal("b", s.engine.CurrentPlayer())

	s.requireRejected("b", Play{Index: 1}, games.ErrIllegalMove)
	_, err = s.engine.Apply("b", Play{Index: 0})
	s.Require().NoError(err)
}

func (s *EngineTestSuite) TestWildRejectsBadColour() {
	s.seat(map[string][]Card{
		"a": {wild, red5},
		"b": {blue1},
	}, []string{"a", "b"}, red3, nil)

	s.requireRejected("a", Play{Index: 0, Color: "purple"}, games.ErrIllegalMove)
}

func (s *EngineTestSuite) TestDrawnPlayableCardKeepsTurn() {
	s.seat(map[string][]Card{
		"a": {blue1},
		"b": {blue2},
	}, []string{"a", "b"}, red3, []Card{red9})

	_, err := s.engine.Apply("a", Draw{})
	s.Require().NoError(err)
	s.Equal("a", s.engine.CurrentPlayer())
	s.True(s.engine.MustDrawOrPass())
	s.Equal([]int{1}, s.engine.LegalPlays("a"))

	s.requireRejected("a", Play{Index: 0}, games.ErrIllegalMove)
	s.requireRejected("a", Draw{}, games.ErrIllegalMove)

	_, err = s.engine.Apply("a", Pass{})
	s.Require().NoError(err)
	s.Equal("b", s.engine.CurrentPlayer())
	s.False(s.engine.MustDrawOrPass())
}

func (s *EngineTestSuite) TestDrawnCardCanBePlayed() {
	s.seat(map[string][]Card{
		"a": {blue1},
		"b": {blue2},
	}, []string{"a", "b"}, red3, []Card{red9})

	_, err := s.engine.Apply("a", Draw{})
	s.Require().NoError(err)

	_, err = s.engine.Apply("a", Play{Index: 1})
	s.Require().NoError(err)
	s.Equal("b", s.engine.CurrentPlayer())
	top, _ := s.engine.discard.Peek()
	s.Equal(red9, top)
}

func (s *EngineTestSuite) TestDrawnUnplayableCardPassesTurn() {
	s.seat(map[string][]Card{
		"a": {blue1},
		"b": {blue2},
	}, []string{"a", "b"}, red3, []Card{green7})

	_, err := s.engine.Apply("a", Draw{})
	s.Require().NoError(err)
	s.Equal("b", s.engine.CurrentPlayer())
	s.Len(s.engine.Hand("a"), 2)
}

func (s *EngineTestSuite) TestDrawRebuildsFromDiscard() {
	s.seat(map[string][]Card{
		"a": {blue1},
		"b": {blue2},
	}, []string{"a", "b"}, red3, nil)
	s.engine.discard = deck.New([]Card{green7, yel4, red3})
	before := s.total()

	_, err := s.engine.Apply("a", Draw{})
	s.Require().NoError(err)

	s.Equal(1, s.engine.discard.Len())
	top, _ := s.engine.discard.Peek()
	s.Equal(red3, top)
	s.Equal(before, s.total())
}

func (s *EngineTestSuite) TestExhaustedDeckIsInvariantViolation() {
	s.seat(map[string][]Card{
		"a": {blue1},
		"b": {blue2},
	}, []string{"a", "b"}, red3, nil)

	_, err := s.engine.Apply("a", Draw{})

	var inv *games.InvariantError
	s.Require().True(errors.As(err, &inv))
	s.ErrorIs(err, games.ErrDeckExhausted)
	s.False(games.IsRejection(err))
}

func (s *EngineTestSuite) TestCatchUno() {
	s.seat(map[string][]Card{
		"a": {red5, red9},
		"b": {blue1, blue2},
	}, []string{"a", "b"}, red3, []Card{green7, yel4, blue3})

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.False(s.engine.players[0].CalledUno)

	s.requireRejected("a", Catch{Target: "a"}, games.ErrIllegalMove)
	s.requireRejected("a", Catch{Target: "b"}, games.ErrIllegalMove)

	_, err = s.engine.Apply("b", Catch{Target: "a"})
	s.Require().NoError(err)
	s.Len(s.engine.Hand("a"), 3)
	s.Equal("b", s.engine.CurrentPlayer(), "catching does not move the turn")
}

func (s *EngineTestSuite) TestCalledUnoCannotBeCaught() {
	s.seat(map[string][]Card{
		"a": {red5, red9},
		"b": {blue1, blue2},
	}, []string{"a", "b"}, red3, []Card{green7, yel4})

	_, err := s.engine.Apply("a", Play{Index: 0, Uno: true})
	s.Require().NoError(err)
	s.True(s.engine.players[0].CalledUno)

	s.requireRejected("b", Catch{Target: "a"}, games.ErrIllegalMove)
}

func (s *EngineTestSuite) TestForfeitOffTurn() {
	s.seat(map[string][]Card{
		"a": {red5, red9},
		"b": {blue1, blue2},
		"c": {green7},
	}, []string{"a", "b", "c"}, red3, nil)
	before := s.total()

	_, err := s.engine.Forfeit("b")
	s.Require().NoError(err)
	s.Equal(games.PhaseActive, s.engine.Phase())
	s.Empty(s.engine.Hand("b"))
	s.Equal(2, s.engine.draw.Len())
	s.Equal(before, s.total())

	_, err = s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Equal("c", s.engine.CurrentPlayer(), "forfeited seat is skipped")

	_, err = s.engine.Apply("b", Draw{})
	s.ErrorIs(err, games.ErrNotInGame)
}

func (s *EngineTestSuite) TestForfeitOnTurnDropsPenalty() {
	s.seat(map[string][]Card{
		"a": {redDraw2, red9},
		"b": {blue1, blue2},
		"c": {green7},
	}, []string{"a", "b", "c"}, red3, nil)

	_, err := s.engine.Apply("a", Play{Index: 0})
	s.Require().NoError(err)
	s.Require().Equal("b", s.engine.CurrentPlayer())

	_, err = s.engine.Forfeit("b")
	s.Require().NoError(err)
	s.Equal(0, s.engine.pending)
	s.Equal("c", s.engine.CurrentPlayer())
}

func (s *EngineTestSuite) TestForfeitLeavingOnePlayerEndsGame() {
	s.seat(map[string][]Card{
		"a": {red5},
		"b": {blue1, blue2},
	}, []string{"a", "b"}, red3, nil)

	out, err := s.engine.Forfeit("a")
	s.Require().NoError(err)
	s.True(out.Finished)
	s.Equal([]string{"b"}, out.Winners)

	_, err = s.engine.Forfeit("b")
	s.ErrorIs(err, games.ErrGameNotActive)
}

func (s *EngineTestSuite) TestSnapshotHidesHands() {
	s.seat(map[string][]Card{
		"a": {red5},
		"b": {blue1, blue2},
	}, []string{"a", "b"}, red3, []Card{green7})

	snap, ok := s.engine.Snapshot().(Snapshot)
	s.Require().True(ok)
	s.Equal("a", snap.Turn)
	s.Equal(&red3, snap.Top)
	s.Equal(1, snap.DrawPile)
	s.Equal([]PlayerView{{ID: "a", Cards: 1}, {ID: "b", Cards: 2}}, snap.Players)

	b, err := json.Marshal(snap)
	s.Require().NoError(err)
	s.NotContains(string(b), `"hand"`)
}

// TestRandomGamesConserveCards plays seeded random games and checks the card
// count and rejection behaviour after every move.
func (s *EngineTestSuite) TestRandomGamesConserveCards() {
	for seed := int64(1); seed <= 20; seed++ {
		src := rng.New(&rng.Config{Seed: seed})
		s.engine = New(nil, src)
		ids := []string{"a", "b", "c", "d"}
		for _, id := range ids {
			s.Require().True(s.engine.AddPlayer(id))
		}
		s.Require().True(s.engine.Start())
		s.Require().Equal(DeckSize, s.total())

		for step := 0; step < 3000 && s.engine.Phase() == games.PhaseActive; step++ {
			current := s.engine.CurrentPlayer()

			for _, id := range ids {
				if id != current {
					s.requireRejected(id, Draw{}, games.ErrNotYourTurn)
					break
				}
			}

			var move games.Move
			switch legal := s.engine.LegalPlays(current); {
			case s.engine.awaitingColor:
				move = ChooseColor{Color: Colors[src.Intn(len(Colors))]}
			case len(legal) > 0:
				move = Play{Index: legal[src.Intn(len(legal))], Uno: true}
			case s.engine.MustDrawOrPass():
				move = Pass{}
			default:
				move = Draw{}
			}

			_, err := s.engine.Apply(current, move)
			var inv *games.InvariantError
			if errors.As(err, &inv) {
				break
			}
			s.Require().NoError(err, "seed %d step %d move %s", seed, step, move.MoveName())
			s.Require().Equal(DeckSize, s.total(), "seed %d step %d", seed, step)
		}

		if s.engine.Phase() == games.PhaseFinished {
			s.requireRejected(ids[0], Draw{}, games.ErrGameNotActive)
		}
	}
}
