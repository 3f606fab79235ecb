package history

import "github.com/KirkDiggler/tablebot/internal/models"

const defaultLimit = 10

type SaveMatchInput struct {
	Match *models.Match
}

type GetMatchInput struct {
	MatchID string
}

type GetMatchesByChannelInput struct {
	ChannelID string

	// Limit caps the number of matches; zero means 10
	Limit int
}

type GetRecentMatchesInput struct {
	Limit int
}

type GetMatchesOutput struct {
	Matches []*models.Match
}

func limitOrDefault(limit int) int64 {
	if limit <= 0 {
		return defaultLimit
	}
	return int64(limit)
}
