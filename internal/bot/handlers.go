package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Archive is the read side of the archive the commands are answered from.
type Archive interface {
	GetRanking(season string) (string, error)
	GetMatchday(season, journee string) (string, error)
	GetHistory(season string) (string, error)
	GetPalmares() (string, error)
	GetLeaders() (string, error)
	GetPlayer(query string) (string, error)
	GetSeasons(competition string) (string, error)
}

type Handler struct {
	archive Archive
}

func NewHandler(archive Archive) *Handler {
	return &Handler{archive: archive}
}

const helpText = "Available commands:\n" +
	"/classement [saison] - Season ranking (e.g. ligue1 or ligue1-2019-2020)\n" +
	"/journee [saison] [n] - Matchday standings, the latest by default\n" +
	"/historique [saison] - Leaders after each matchday and season highlights\n" +
	"/palmares - Season titles\n" +
	"/leaders - Most matchday wins\n" +
	"/joueur <nom> - Player career\n" +
	"/saisons [competition] - Seasons of a competition"

func (h *Handler) HandleCommand(update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.Fields(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to the pronostics archive! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "classement":
		h.reply(&msg, "ranking", func() (string, error) { return h.archive.GetRanking(arg(args, 0)) })
	case "journee":
		h.handleMatchday(&msg, args)
	case "historique":
		h.reply(&msg, "history", func() (string, error) { return h.archive.GetHistory(arg(args, 0)) })
	case "palmares":
		h.reply(&msg, "palmares", h.archive.GetPalmares)
	case "leaders":
		h.reply(&msg, "matchday leaders", h.archive.GetLeaders)
	case "joueur":
		h.handlePlayer(&msg, args)
	case "saisons":
		h.reply(&msg, "seasons", func() (string, error) { return h.archive.GetSeasons(arg(args, 0)) })
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) reply(msg *tgbotapi.MessageConfig, what string, get func() (string, error)) {
	text, err := get()
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching %s: %v", what, err)
	} else {
		msg.Text = text
	}
}

// handleMatchday accepts "/journee", "/journee 12", "/journee ligue1" and
// "/journee ligue1-2019-2020 12".
func (h *Handler) handleMatchday(msg *tgbotapi.MessageConfig, args []string) {
	season, journee := arg(args, 0), arg(args, 1)
	if len(args) == 1 && isMatchdayNumber(season) {
		season, journee = "", season
	}
	h.reply(msg, "matchday", func() (string, error) { return h.archive.GetMatchday(season, journee) })
}

func (h *Handler) handlePlayer(msg *tgbotapi.MessageConfig, args []string) {
	if len(args) == 0 {
		msg.Text = "Please provide a player name. Usage: /joueur <nom>"
		return
	}
	h.reply(msg, "player", func() (string, error) { return h.archive.GetPlayer(strings.Join(args, " ")) })
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func isMatchdayNumber(s string) bool {
	s = strings.TrimPrefix(strings.ToLower(s), "j")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
