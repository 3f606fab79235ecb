package discord

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// RollCommand handles the /roll command
type RollCommand struct {
	BaseCommand
	bot *Bot
}

// NewRollCommand creates a new roll command handler
func NewRollCommand(bot *Bot) *RollCommand {
	minOne := 1.0
	return &RollCommand{
		BaseCommand: BaseCommand{
			Name:        "roll",
			Description: "Roll some dice",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many dice (default 1)",
					MinValue:    &minOne,
					MaxValue:    20,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "sides",
					Description: "Sides per die (default 6)",
					MinValue:    &minOne,
					MaxValue:    1000,
				},
			},
		},
		bot: bot,
	}
}

// Handle processes a Discord interaction for the roll command
func (c *RollCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	ctx := context.Background()
	userID, _ := interactionUser(i)
	opts := optionMap(data.Options)

	input := &game.RollDiceInput{}
	if opt, ok := opts["count"]; ok {
		input.Count = int(opt.IntValue())
	}
	if opt, ok := opts["sides"]; ok {
		input.Sides = int(opt.IntValue())
	}

	out, err := c.bot.gameService.RollDice(ctx, input)
	if err != nil {
		return c.bot.respondError(ctx, s, i, err)
	}
	return RespondWithEmbed(s, i, renderRoll(userID, out))
}

// StatsCommand handles the /stats command
type StatsCommand struct {
	BaseCommand
	bot *Bot
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(bot *Bot) *StatsCommand {
	gameChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Uno", Value: string(games.KindUno)},
		{Name: "Texas Hold'em", Value: string(games.KindPoker)},
	}

	return &StatsCommand{
		BaseCommand: BaseCommand{
			Name:        "stats",
			Description: "Game records and coins",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "player",
					Description: "Show a player's record",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Whose record (default you)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Rank players by wins",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "game",
							Description: "Which game",
							Required:    true,
							Choices:     gameChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "balance",
					Description: "Show coins earned this season",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Whose coins (default you)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "standings",
					Description: "Rank this server's season by coins",
				},
			},
		},
		bot: bot,
	}
}

// Handle processes a Discord interaction for the stats command
func (c *StatsCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	ctx := context.Background()
	userID, _ := interactionUser(i)
	sub, opts := subcommand(data)
	if opt, ok := opts["user"]; ok {
		if u := opt.UserValue(s); u != nil {
			userID = u.ID
		}
	}

	switch sub {
	case "player":
		out, err := c.bot.gameService.GetPlayerStats(ctx, &game.GetPlayerStatsInput{PlayerID: userID})
		if err != nil {
			return c.bot.respondError(ctx, s, i, err)
		}
		return RespondWithEmbed(s, i, renderStats(userID, out.Stats))

	case "leaderboard":
		kind := games.Kind(opts["game"].StringValue())
		out, err := c.bot.gameService.GetLeaderboard(ctx, &game.GetLeaderboardInput{Kind: kind})
		if err != nil {
			return c.bot.respondError(ctx, s, i, err)
		}
		return RespondWithEmbed(s, i, renderLeaderboard(out.Leaderboard))

	case "balance":
		out, err := c.bot.gameService.GetBalance(ctx, &game.GetBalanceInput{
			GuildID:  i.GuildID,
			PlayerID: userID,
		})
		if err != nil {
			return c.bot.respondError(ctx, s, i, err)
		}
		return RespondWithEmbed(s, i, renderBalance(userID, out))

	case "standings":
		out, err := c.bot.gameService.GetStandings(ctx, &game.GetStandingsInput{GuildID: i.GuildID})
		if err != nil {
			return c.bot.respondError(ctx, s, i, err)
		}
		return RespondWithEmbed(s, i, renderStandings(out))

	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}
