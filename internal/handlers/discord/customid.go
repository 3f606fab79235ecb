package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/games/poker"
	"github.com/KirkDiggler/tablebot/internal/games/uno"
)

// Verb names what a button does
type Verb string

// Table verbs
const (
	VerbJoin    Verb = "join"
	VerbLeave   Verb = "leave"
	VerbStart   Verb = "start"
	VerbAbandon Verb = "abandon"
	VerbHand    Verb = "hand"
)

// Uno verbs
const (
	VerbUnoPlay  Verb = "uno_play"
	VerbUnoDraw  Verb = "uno_draw"
	VerbUnoPass  Verb = "uno_pass"
	VerbUnoColor Verb = "uno_color"
	VerbUnoCatch Verb = "uno_catch"
)

// Poker verbs
const (
	VerbFold  Verb = "fold"
	VerbCheck Verb = "check"
	VerbCall  Verb = "call"
	VerbRaise Verb = "raise"
	VerbAllIn Verb = "all_in"
)

const (
	customIDPrefix = "tb"
	customIDSep    = "|"

	// maxCustomIDLength is Discord's limit for component custom IDs
	maxCustomIDLength = 100

	// maxRaise bounds a decoded raise well above any stack a table deals
	maxRaise = 1_000_000_000
)

// Error is returned when a custom ID cannot be decoded
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotOurs       Error = "custom ID was not issued by this bot"
	ErrMalformedID   Error = "malformed custom ID"
	ErrUnknownVerb   Error = "unknown custom ID verb"
	ErrNotAMove      Error = "custom ID does not carry a move"
	ErrCustomIDLimit Error = "custom ID is too long"
)

// Action is a decoded component custom ID. It is the only place button
// strings are parsed; everything past the boundary works with Action or
// games.Move.
type Action struct {
	Verb Verb

	// Version is the game version the component was rendered at
	Version uint64

	// Uno
	CardIndex int
	Color     uno.Color
	CallUno   bool
	Target    string

	// Poker
	Amount int64
}

var argCounts = map[Verb]int{
	VerbJoin:     0,
	VerbLeave:    0,
	VerbStart:    0,
	VerbAbandon:  0,
	VerbHand:     0,
	VerbUnoPlay:  2,
	VerbUnoDraw:  0,
	VerbUnoPass:  0,
	VerbUnoColor: 1,
	VerbUnoCatch: 1,
	VerbFold:     0,
	VerbCheck:    0,
	VerbCall:     0,
	VerbRaise:    1,
	VerbAllIn:    0,
}

// Encode renders the action as a custom ID
func (a Action) Encode() (string, error) {
	if _, ok := argCounts[a.Verb]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVerb, a.Verb)
	}

	parts := []string{customIDPrefix, string(a.Verb), strconv.FormatUint(a.Version, 10)}
	switch a.Verb {
	case VerbUnoPlay:
		call := ""
		if a.CallUno {
			call = "uno"
		}
		parts = append(parts, strconv.Itoa(a.CardIndex), call)
	case VerbUnoColor:
		parts = append(parts, string(a.Color))
	case VerbUnoCatch:
		parts = append(parts, a.Target)
	case VerbRaise:
		parts = append(parts, strconv.FormatInt(a.Amount, 10))
	}

	id := strings.Join(parts, customIDSep)
	if len(id) > maxCustomIDLength {
		return "", ErrCustomIDLimit
	}
	return id, nil
}

// MustEncode is Encode for actions built by the renderer, which never exceed
// the limit
func (a Action) MustEncode() string {
	id, err := a.Encode()
	if err != nil {
		panic(err)
	}
	return id
}

// DecodeAction parses a custom ID produced by Encode
func DecodeAction(customID string) (Action, error) {
	parts := strings.Split(customID, customIDSep)
	if len(parts) < 3 || parts[0] != customIDPrefix {
		return Action{}, ErrNotOurs
	}

	a := Action{Verb: Verb(parts[1])}
	want, ok := argCounts[a.Verb]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownVerb, parts[1])
	}
	args := parts[3:]
	if len(args) != want {
		return Action{}, fmt.Errorf("%w: %s takes %d arguments", ErrMalformedID, a.Verb, want)
	}

	version, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Action{}, fmt.Errorf("%w: bad version: %w", ErrMalformedID, err)
	}
	a.Version = version

	switch a.Verb {
	case VerbUnoPlay:
		idx, err := strconv.Atoi(args[0])
		if err != nil || idx < 0 {
			return Action{}, fmt.Errorf("%w: bad card index %q", ErrMalformedID, args[0])
		}
		if args[1] != "" && args[1] != "uno" {
			return Action{}, fmt.Errorf("%w: bad uno flag %q", ErrMalformedID, args[1])
		}
		a.CardIndex = idx
		a.CallUno = args[1] == "uno"
	case VerbUnoColor:
		a.Color = uno.Color(args[0])
		if !a.Color.Playable() {
			return Action{}, fmt.Errorf("%w: bad colour %q", ErrMalformedID, args[0])
		}
	case VerbUnoCatch:
		if args[0] == "" {
			return Action{}, fmt.Errorf("%w: empty catch target", ErrMalformedID)
		}
		a.Target = args[0]
	case VerbRaise:
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || amount <= 0 || amount > maxRaise {
			return Action{}, fmt.Errorf("%w: bad raise %q", ErrMalformedID, args[0])
		}
		a.Amount = amount
	}

	return a, nil
}

// Move converts the action into the engine move it stands for
func (a Action) Move() (games.Move, error) {
	switch a.Verb {
	case VerbUnoPlay:
		return uno.Play{Index: a.CardIndex, Uno: a.CallUno}, nil
	case VerbUnoDraw:
		return uno.Draw{}, nil
	case VerbUnoPass:
		return uno.Pass{}, nil
	case VerbUnoColor:
		return uno.ChooseColor{Color: a.Color}, nil
	case VerbUnoCatch:
		return uno.Catch{Target: a.Target}, nil
	case VerbFold:
		return poker.Fold{}, nil
	case VerbCheck:
		return poker.Check{}, nil
	case VerbCall:
		return poker.Call{}, nil
	case VerbRaise:
		return poker.Raise{Amount: a.Amount}, nil
	case VerbAllIn:
		return poker.AllIn{}, nil
	}
	return nil, ErrNotAMove
}
