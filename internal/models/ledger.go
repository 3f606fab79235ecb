package models

import (
	"time"
)

// LedgerReason explains a coin movement
type LedgerReason string

const (
	// LedgerReasonUnoWin pays the winner of an Uno game
	LedgerReasonUnoWin LedgerReason = "uno_win"

	// LedgerReasonPokerWinnings converts net poker chips into coins
	LedgerReasonPokerWinnings LedgerReason = "poker_winnings"

	// LedgerReasonParticipation pays everyone who finished a game
	LedgerReasonParticipation LedgerReason = "participation"
)

// LedgerEntry records coins credited to a player
type LedgerEntry struct {
	// ID is the unique identifier for the entry
	ID string

	// SeasonID is the season the coins count towards
	SeasonID string

	// PlayerID is the player credited
	PlayerID string

	// MatchID is the match that paid out
	MatchID string

	// Amount is the number of coins
	Amount int64

	// Reason is why the coins were paid
	Reason LedgerReason

	// Timestamp is when the entry was written
	Timestamp time.Time
}
