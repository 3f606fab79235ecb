// Package games defines the contract shared by the turn-based rule engines.
//
// An engine owns one table's state: its players, cards and turn pointer. It
// never renders anything and never talks to storage; callers feed it moves
// and read back outcomes and snapshots. Engines are not safe for concurrent
// use and rely on the session registry to serialise access.
package games

import (
	"errors"
	"fmt"
)

// Kind identifies a game type. It doubles as the stats key.
type Kind string

const (
	// KindUno is the hand-emptying colour-matching game
	KindUno Kind = "uno"

	// KindPoker is single-hand no-limit Texas Hold'em
	KindPoker Kind = "poker"
)

// Valid reports whether k names a known game
func (k Kind) Valid() bool {
	return k == KindUno || k == KindPoker
}

// Phase is the coarse lifecycle stage of an engine
type Phase string

const (
	// PhaseLobby accepts joins and leaves
	PhaseLobby Phase = "lobby"

	// PhaseDealing is held only while Start runs
	PhaseDealing Phase = "dealing"

	// PhaseActive accepts moves
	PhaseActive Phase = "active"

	// PhaseFinished is terminal; results are available
	PhaseFinished Phase = "finished"
)

// IsTerminal reports whether no more moves will be accepted
func (p Phase) IsTerminal() bool {
	return p == PhaseFinished
}

// Rejection is the reason a move was refused. A rejected move never changes
// engine state.
type Rejection string

// Error implements the error interface
func (r Rejection) Error() string {
	return string(r)
}

const (
	ErrNotYourTurn       Rejection = "not-your-turn"
	ErrIllegalMove       Rejection = "illegal-move"
	ErrGameNotActive     Rejection = "game-not-active"
	ErrNotInGame         Rejection = "not-in-game"
	ErrInsufficientChips Rejection = "insufficient-chips"
	ErrUnknownMove       Rejection = "unknown-move"
)

// ErrDeckExhausted means the draw pile and the discard pile are both empty
var ErrDeckExhausted = errors.New("draw pile and discard pile are both empty")

// InvariantError reports a broken engine invariant. The session that hit it
// cannot continue.
type InvariantError struct {
	Kind Kind
	Err  error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s invariant violated: %v", e.Kind, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err is a recoverable move rejection
func IsRejection(err error) bool {
	var r Rejection
	return errors.As(err, &r)
}

// Move is a player action. Each engine declares its own concrete move types;
// an engine rejects move types it does not know with ErrUnknownMove.
type Move interface {
	MoveName() string
}

// Action is a log entry describing the last accepted move
type Action struct {
	PlayerID string `json:"player_id"`
	Verb     string `json:"verb"`
	Detail   string `json:"detail,omitempty"`
}

// Outcome is returned for every accepted move
type Outcome struct {
	Action   Action
	Finished bool
	Winners  []string
}

// Result is one player's final standing once an engine is finished
type Result struct {
	PlayerID string
	Won      bool
	Score    int64
}

// Engine is the rule engine contract
type Engine interface {
	Kind() Kind
	Phase() Phase

	// AddPlayer seats a player. It is a no-op returning false outside the
	// lobby, for a duplicate id, or when the table is full.
	AddPlayer(id string) bool

	// RemovePlayer unseats a player. Only valid in the lobby.
	RemovePlayer(id string) bool

	// Players returns seated player ids in seat order
	Players() []string

	// Start deals and moves to the active phase. It returns false and
	// changes nothing when the engine is not in the lobby or too few
	// players are seated.
	Start() bool

	// Apply validates and applies a move. A Rejection leaves state
	// unchanged; an *InvariantError means the session must be aborted.
	Apply(playerID string, move Move) (Outcome, error)

	// Forfeit removes a player from an active game
	Forfeit(playerID string) (Outcome, error)

	// CurrentPlayer returns whose turn it is, or "" when not active
	CurrentPlayer() string

	// Results returns final standings; empty until finished
	Results() []Result

	// Snapshot returns the public, JSON-serialisable table state
	Snapshot() any
}

// NextSeat walks from seat from in direction dir and returns the first seat
// for which eligible is true, or -1 when no other seat qualifies.
func NextSeat(from, dir, n int, eligible func(int) bool) int {
	if n == 0 {
		return -1
	}
	seat := from
	for i := 0; i < n; i++ {
		seat = ((seat+dir)%n + n) % n
		if seat == from {
			break
		}
		if eligible(seat) {
			return seat
		}
	}
	return -1
}
