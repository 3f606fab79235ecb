package discord

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/tablebot/internal/games"
	"github.com/KirkDiggler/tablebot/internal/games/poker"
	"github.com/KirkDiggler/tablebot/internal/games/uno"
	"github.com/KirkDiggler/tablebot/internal/models"
	"github.com/KirkDiggler/tablebot/internal/services/game"
	"github.com/KirkDiggler/tablebot/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen  = 0x00ff00
	colorRed    = 0xff0000
	colorGold   = 0xf1c40f
	colorGrey   = 0x95a5a6
	colorPurple = 0x9b59b6

	// buttonsPerRow and maxRows are Discord's component limits
	buttonsPerRow = 5
	maxRows       = 5
)

var unoColors = map[uno.Color]int{
	uno.ColorRed:    0xe74c3c,
	uno.ColorYellow: 0xf1c40f,
	uno.ColorGreen:  0x2ecc71,
	uno.ColorBlue:   0x3498db,
}

var unoColorEmoji = map[uno.Color]string{
	uno.ColorRed:    "🟥",
	uno.ColorYellow: "🟨",
	uno.ColorGreen:  "🟩",
	uno.ColorBlue:   "🟦",
	uno.ColorWild:   "🌈",
}

var kindTitles = map[games.Kind]string{
	games.KindUno:   "Uno",
	games.KindPoker: "Texas Hold'em",
}

func mention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

func mentions(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, mention(id))
	}
	return out
}

func button(label string, style discordgo.ButtonStyle, action Action) discordgo.Button {
	return discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: action.MustEncode(),
	}
}

// rows packs buttons into action rows, dropping whatever does not fit
func rows(buttons []discordgo.Button) []discordgo.MessageComponent {
	var out []discordgo.MessageComponent
	for start := 0; start < len(buttons) && len(out) < maxRows; start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, b)
		}
		out = append(out, row)
	}
	return out
}

// renderTable renders the public table message for a game
func renderTable(g *game.Game) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: kindTitles[g.Kind],
		Color: colorGreen,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Game %s · move %d", g.SessionID, g.Version),
		},
	}

	var components []discordgo.MessageComponent
	switch g.Phase {
	case games.PhaseLobby:
		embed.Description = fmt.Sprintf("%s opened a table. Join in, then the host starts the game.", mention(g.CreatorID))
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Players (%d)", len(g.Players)),
			Value: strings.Join(mentions(g.Players), "\n"),
		})
		components = lobbyButtons(g.Version)
	default:
		switch snap := g.Snapshot.(type) {
		case uno.Snapshot:
			renderUnoTable(embed, snap)
			if g.Phase == games.PhaseActive {
				components = unoTableButtons(g.Version, snap)
			}
		case poker.Snapshot:
			renderPokerTable(embed, snap)
			if g.Phase == games.PhaseActive {
				components = rows(activeButtons(g.Version))
			}
		}
		if g.Phase.IsTerminal() {
			embed.Color = colorGold
		}
	}

	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
}

// renderClosedTable replaces the table once the game is gone
func renderClosedTable(kind games.Kind, title, message string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("%s · %s", kindTitles[kind], title),
			Description: message,
			Color:       colorGrey,
		}},
		Components: []discordgo.MessageComponent{},
	}
}

func lobbyButtons(version uint64) []discordgo.MessageComponent {
	return rows([]discordgo.Button{
		button("Join", discordgo.SuccessButton, Action{Verb: VerbJoin, Version: version}),
		button("Leave", discordgo.SecondaryButton, Action{Verb: VerbLeave, Version: version}),
		button("Start", discordgo.PrimaryButton, Action{Verb: VerbStart, Version: version}),
		button("Abandon", discordgo.DangerButton, Action{Verb: VerbAbandon, Version: version}),
	})
}

func activeButtons(version uint64) []discordgo.Button {
	return []discordgo.Button{
		button("Show my hand", discordgo.PrimaryButton, Action{Verb: VerbHand, Version: version}),
		button("Leave", discordgo.SecondaryButton, Action{Verb: VerbLeave, Version: version}),
	}
}

func renderUnoTable(embed *discordgo.MessageEmbed, snap uno.Snapshot) {
	var lines []string
	if snap.Top != nil {
		lines = append(lines, fmt.Sprintf("Top card: **%s**", snap.Top))
	}
	if snap.Color != "" {
		lines = append(lines, fmt.Sprintf("Colour: %s %s", unoColorEmoji[snap.Color], snap.Color))
		if c, ok := unoColors[snap.Color]; ok {
			embed.Color = c
		}
	}
	direction := "clockwise"
	if snap.Direction < 0 {
		direction = "counter-clockwise"
	}
	lines = append(lines, fmt.Sprintf("Direction: %s", direction))
	if snap.PendingDraw > 0 {
		lines = append(lines, fmt.Sprintf("Next player draws **%d**", snap.PendingDraw))
	}
	if snap.AwaitingColor {
		lines = append(lines, "Waiting for a colour to be chosen")
	}
	lines = append(lines, fmt.Sprintf("Draw pile: %d · Discard pile: %d", snap.DrawPile, snap.DiscardPile))
	embed.Description = strings.Join(lines, "\n")

	var seats []string
	for i, p := range snap.Players {
		line := fmt.Sprintf("`%d.` %s · %d cards", i+1, mention(p.ID), p.Cards)
		switch {
		case p.ID == snap.Winner:
			line += " 🏆"
		case p.Out:
			line += " (left)"
		case p.ID == snap.Turn:
			line += " ◀"
		}
		if p.CalledUno && p.Cards == 1 {
			line += " **UNO!**"
		}
		seats = append(seats, line)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Players",
		Value: strings.Join(seats, "\n"),
	})

	if a := describeAction(snap.LastAction); a != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Last move", Value: a})
	}
}

// unoTableButtons adds a catch button for every player sitting on one card
// without having called Uno
func unoTableButtons(version uint64, snap uno.Snapshot) []discordgo.MessageComponent {
	buttons := activeButtons(version)
	for i, p := range snap.Players {
		if p.Out || p.Cards != 1 || p.CalledUno {
			continue
		}
		buttons = append(buttons, button(
			fmt.Sprintf("Catch seat %d", i+1),
			discordgo.DangerButton,
			Action{Verb: VerbUnoCatch, Version: version, Target: p.ID},
		))
	}
	return rows(buttons)
}

func renderPokerTable(embed *discordgo.MessageEmbed, snap poker.Snapshot) {
	board := "none yet"
	if len(snap.Board) > 0 {
		board = joinCards(snap.Board)
	}
	embed.Description = fmt.Sprintf("Street: **%s**\nBoard: %s\nPot: **%d** · Current bet: %d",
		snap.Street, board, snap.Pot, snap.CurrentBet)

	var seats []string
	for _, p := range snap.Players {
		line := fmt.Sprintf("%s · stack %d", mention(p.ID), p.Stack)
		if p.Bet > 0 {
			line += fmt.Sprintf(" · bet %d", p.Bet)
		}
		if p.Dealer {
			line = "🔘 " + line
		}
		switch {
		case p.Out:
			line += " (left)"
		case p.Folded:
			line += " (folded)"
		case p.AllIn:
			line += " (all in)"
		case p.ID == snap.Turn:
			line += " ◀"
		}
		if len(p.Hole) > 0 {
			line += fmt.Sprintf("\n  %s %s", joinCards(p.Hole), p.HandName)
		}
		seats = append(seats, line)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Players",
		Value: strings.Join(seats, "\n"),
	})

	if len(snap.Winners) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Winners",
			Value: strings.Join(mentions(snap.Winners), ", "),
		})
	}
	if a := describeAction(snap.LastAction); a != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Last move", Value: a})
	}
}

func describeAction(a games.Action) string {
	if a.PlayerID == "" {
		return ""
	}
	verb := strings.ReplaceAll(a.Verb, "_", " ")
	if a.Detail == "" {
		return fmt.Sprintf("%s %s", mention(a.PlayerID), verb)
	}
	return fmt.Sprintf("%s %s %s", mention(a.PlayerID), verb, a.Detail)
}

func joinCards[C fmt.Stringer](cards []C) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, "`"+c.String()+"`")
	}
	return strings.Join(parts, " ")
}

// renderHand renders the ephemeral hand view for one player
func renderHand(playerID string, hand *game.GetHandOutput) *discordgo.InteractionResponseData {
	g := hand.Game
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Your hand · %s", kindTitles[g.Kind]),
		Color: colorPurple,
	}

	var buttons []discordgo.Button
	switch g.Kind {
	case games.KindUno:
		buttons = renderUnoHand(embed, playerID, hand)
	case games.KindPoker:
		buttons = renderPokerHand(embed, playerID, hand)
	}
	if g.Turn != playerID && g.Phase == games.PhaseActive {
		embed.Description += fmt.Sprintf("\nWaiting on %s.", mention(g.Turn))
	}
	buttons = append(buttons, button("Refresh", discordgo.SecondaryButton, Action{Verb: VerbHand, Version: g.Version}))

	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: rows(buttons),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

func renderUnoHand(embed *discordgo.MessageEmbed, playerID string, hand *game.GetHandOutput) []discordgo.Button {
	g := hand.Game
	var cards []string
	for i, c := range hand.UnoCards {
		cards = append(cards, fmt.Sprintf("`%d` %s %s", i+1, unoColorEmoji[c.Color], c))
	}
	embed.Description = strings.Join(cards, "\n")
	if embed.Description == "" {
		embed.Description = "No cards left."
	}

	snap, _ := g.Snapshot.(uno.Snapshot)
	if g.Phase != games.PhaseActive || g.Turn != playerID {
		return nil
	}

	if snap.AwaitingColor {
		embed.Description += "\n\nPick a colour."
		var buttons []discordgo.Button
		for _, color := range uno.Colors {
			buttons = append(buttons, button(
				fmt.Sprintf("%s %s", unoColorEmoji[color], color),
				discordgo.PrimaryButton,
				Action{Verb: VerbUnoColor, Version: g.Version, Color: color},
			))
		}
		return buttons
	}

	// one free slot in the last row stays for Refresh
	const maxPlays = (maxRows-1)*buttonsPerRow - 1

	var buttons []discordgo.Button
	lastCard := len(hand.UnoCards) == 2
	for _, idx := range hand.UnoPlayable {
		if idx < 0 || idx >= len(hand.UnoCards) || len(buttons) >= maxPlays {
			continue
		}
		label := fmt.Sprintf("%d · %s", idx+1, hand.UnoCards[idx])
		buttons = append(buttons, button(label, discordgo.SuccessButton,
			Action{Verb: VerbUnoPlay, Version: g.Version, CardIndex: idx}))
		if lastCard {
			buttons = append(buttons, button(label+" + UNO!", discordgo.PrimaryButton,
				Action{Verb: VerbUnoPlay, Version: g.Version, CardIndex: idx, CallUno: true}))
		}
	}

	switch {
	case hand.UnoDrewPlayable:
		buttons = append(buttons, button("Keep it (pass)", discordgo.SecondaryButton,
			Action{Verb: VerbUnoPass, Version: g.Version}))
	case snap.PendingDraw > 0:
		buttons = append(buttons, button(fmt.Sprintf("Draw %d", snap.PendingDraw), discordgo.DangerButton,
			Action{Verb: VerbUnoDraw, Version: g.Version}))
	default:
		buttons = append(buttons, button("Draw", discordgo.SecondaryButton,
			Action{Verb: VerbUnoDraw, Version: g.Version}))
	}
	return buttons
}

func renderPokerHand(embed *discordgo.MessageEmbed, playerID string, hand *game.GetHandOutput) []discordgo.Button {
	g := hand.Game
	lines := []string{fmt.Sprintf("Hole cards: %s", joinCards(hand.PokerCards))}
	if hand.PokerHandName != "" {
		lines = append(lines, fmt.Sprintf("Best hand: **%s**", hand.PokerHandName))
	}
	embed.Description = strings.Join(lines, "\n")

	opts := hand.PokerOptions
	if opts == nil || g.Turn != playerID {
		return nil
	}
	embed.Description += fmt.Sprintf("\n\nStack: %d · To call: %d", opts.Stack, opts.ToCall)

	buttons := []discordgo.Button{
		button("Fold", discordgo.DangerButton, Action{Verb: VerbFold, Version: g.Version}),
	}
	if opts.CanCheck {
		buttons = append(buttons, button("Check", discordgo.SecondaryButton, Action{Verb: VerbCheck, Version: g.Version}))
	} else {
		buttons = append(buttons, button(fmt.Sprintf("Call %d", min(opts.ToCall, opts.Stack)), discordgo.SuccessButton,
			Action{Verb: VerbCall, Version: g.Version}))
	}
	if opts.CanRaise {
		buttons = append(buttons, button(fmt.Sprintf("Raise %d", opts.MinRaise), discordgo.PrimaryButton,
			Action{Verb: VerbRaise, Version: g.Version, Amount: opts.MinRaise}))
		if double := 2 * opts.MinRaise; opts.ToCall+double < opts.Stack {
			buttons = append(buttons, button(fmt.Sprintf("Raise %d", double), discordgo.PrimaryButton,
				Action{Verb: VerbRaise, Version: g.Version, Amount: double}))
		}
	}
	if opts.Stack > 0 {
		buttons = append(buttons, button(fmt.Sprintf("All in (%d)", opts.Stack), discordgo.DangerButton,
			Action{Verb: VerbAllIn, Version: g.Version}))
	}
	return buttons
}

// renderGameOver renders the announcement posted when a game ends
func renderGameOver(msg *messaging.GetGameOverMessageOutput) *discordgo.MessageEmbed {
	color := colorGrey
	if msg.Tone == messaging.ToneCelebration {
		color = colorGold
	}
	return &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Message,
		Color:       color,
	}
}

// renderError renders a notice for a rejected command
func renderError(msg *messaging.GetErrorMessageOutput) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       msg.Title,
			Description: msg.Message,
			Color:       colorRed,
		}},
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func renderRoll(userID string, roll *game.RollDiceOutput) *discordgo.MessageEmbed {
	faces := make([]string, 0, len(roll.Rolls))
	for _, r := range roll.Rolls {
		faces = append(faces, fmt.Sprintf("`%d`", r))
	}
	return &discordgo.MessageEmbed{
		Title:       "🎲 Dice Roll",
		Description: fmt.Sprintf("%s rolled %s", mention(userID), strings.Join(faces, " ")),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total", Value: fmt.Sprintf("%d", roll.Total), Inline: true},
		},
	}
}

func renderStats(playerID string, stats []*models.PlayerStats) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📊 Stats",
		Description: mention(playerID),
		Color:       colorGreen,
	}
	if len(stats) == 0 {
		embed.Description += " has not finished a game yet."
		return embed
	}
	for _, st := range stats {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: kindTitles[games.Kind(st.GameKey)],
			Value: fmt.Sprintf("Played %d · Won %d · Lost %d\nBest score %d",
				st.Played, st.Wins, st.Losses, st.HighScore),
			Inline: true,
		})
	}
	return embed
}

func renderLeaderboard(board *models.Leaderboard) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 %s Leaderboard", kindTitles[games.Kind(board.GameKey)]),
		Color: colorGold,
	}
	if len(board.Entries) == 0 {
		embed.Description = "Nobody has finished a game yet."
		return embed
	}
	var lines []string
	for i, e := range board.Entries {
		lines = append(lines, fmt.Sprintf("**%d.** %s · %d wins in %d games", i+1, mention(e.PlayerID), e.Wins, e.Played))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func renderBalance(playerID string, out *game.GetBalanceOutput) *discordgo.MessageEmbed {
	season := "No season has started yet."
	if out.Season != nil {
		season = fmt.Sprintf("Season %d", out.Season.Number)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🪙 Balance",
		Description: fmt.Sprintf("%s\n%s", mention(playerID), season),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "This season", Value: fmt.Sprintf("%d", out.Balance.Season), Inline: true},
			{Name: "Lifetime", Value: fmt.Sprintf("%d", out.Balance.Lifetime), Inline: true},
		},
	}
	if len(out.Recent) > 0 {
		lines := make([]string, 0, len(out.Recent))
		for _, e := range out.Recent {
			lines = append(lines, fmt.Sprintf("+%d %s", e.Amount, ledgerReasons[e.Reason]))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

var ledgerReasons = map[models.LedgerReason]string{
	models.LedgerReasonUnoWin:        "Uno win",
	models.LedgerReasonPokerWinnings: "poker winnings",
	models.LedgerReasonParticipation: "for playing",
}

func renderStandings(out *game.GetStandingsOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🪙 Season Standings",
		Color: colorGold,
	}
	if out.Season == nil {
		embed.Description = "No season has started yet."
		return embed
	}
	embed.Title = fmt.Sprintf("🪙 Season %d Standings", out.Season.Number)
	if len(out.Balances) == 0 {
		embed.Description = "Nobody has earned coins this season."
		return embed
	}
	var lines []string
	for i, b := range out.Balances {
		lines = append(lines, fmt.Sprintf("**%d.** %s · %d coins", i+1, mention(b.PlayerID), b.Season))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func renderHistory(matches []*models.Match) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Recent Games",
		Color: colorGreen,
	}
	if len(matches) == 0 {
		embed.Description = "No games have been played here yet."
		return embed
	}
	var lines []string
	for _, m := range matches {
		line := fmt.Sprintf("<t:%d:R> %s · %s", m.EndedAt.Unix(), kindTitles[games.Kind(m.GameKey)], m.Status)
		if len(m.WinnerIDs) > 0 {
			line += " · won by " + strings.Join(mentions(m.WinnerIDs), ", ")
		}
		lines = append(lines, line)
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
