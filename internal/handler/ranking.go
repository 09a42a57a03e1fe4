package handler

import (
	"fmt"
	"strings"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/service"
)

// RankingHandler handles /top.
type RankingHandler struct {
	ranking *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(ranking *service.RankingService) *RankingHandler {
	return &RankingHandler{ranking: ranking}
}

// HandleTop handles /top.
func (h *RankingHandler) HandleTop(c Context) error {
	accounts, err := h.ranking.Top(c.Ctx(), c.CommunityID())
	if err != nil {
		return err
	}
	return reply(c, FormatLeaderboard(accounts))
}

// FormatLeaderboard renders the richest accounts, best first.
func FormatLeaderboard(accounts []*model.Account) string {
	if len(accounts) == 0 {
		return "🏆 Nobody has a balance yet."
	}

	var sb strings.Builder
	sb.WriteString("🏆 **Leaderboard**\n")
	for i, a := range accounts {
		var medal string
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		default:
			medal = fmt.Sprintf("%d.", i+1)
		}
		fmt.Fprintf(&sb, "%s %s - %s\n", medal, mention(a.UserID), coins(a.Balance))
	}
	return strings.TrimRight(sb.String(), "\n")
}
