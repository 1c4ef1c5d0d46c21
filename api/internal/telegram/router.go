// Package telegram is the chat front end: a photo of a result sheet goes in,
// an editable course table with its SGPA comes back.
package telegram

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/logger"
	"sgpa-scan/api/internal/scan"
)

// maxMessageLen keeps replies under Telegram's 4096 character cap.
const maxMessageLen = 3900

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot     Bot
	Scanner *scan.Pipeline
	Log     *logger.Logger
	// ScanTimeout bounds one photo scan; zero means two minutes.
	ScanTimeout time.Duration

	sessions sync.Map // chatID -> *session
}

func NewRouter(bot Bot, scanner *scan.Pipeline, log *logger.Logger, scanTimeout time.Duration) *Router {
	if log == nil {
		log = logger.Nop()
	}
	if scanTimeout <= 0 {
		scanTimeout = 2 * time.Minute
	}
	return &Router{Bot: bot, Scanner: scanner, Log: log, ScanTimeout: scanTimeout}
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(cid, msg.Command(), msg.CommandArguments())
		return
	}

	if fileID, mime, ok := imageOf(msg); ok {
		r.acceptImage(ctx, cid, fileID, mime)
		return
	}

	if strings.TrimSpace(msg.Text) != "" {
		r.send(cid, "Send a photo of your result sheet, or /start for the list of commands.")
	}
}

// HandleCommand runs one slash command for a chat.
func (r *Router) HandleCommand(chatID int64, command, args string) {
	s := r.session(chatID)
	var reply string
	switch command {
	case "start", "help":
		reply = helpText
	case "sgpa":
		reply = s.withSheet(cmdShow)
	case "add":
		reply = s.withSheet(func(sh *grades.Sheet) string { return cmdAdd(sh, args) })
	case "set":
		reply = s.withSheet(func(sh *grades.Sheet) string { return cmdSet(sh, args) })
	case "del":
		reply = s.withSheet(func(sh *grades.Sheet) string { return cmdDelete(sh, args) })
	case "clear":
		reply = s.withSheet(cmdClear)
	case "predict":
		reply = s.withSheet(func(sh *grades.Sheet) string { return cmdPredict(sh, args) })
	case "scale":
		reply = formatScale()
	default:
		reply = "Unknown command. Try /start."
	}
	r.sendMarkdown(chatID, reply)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, clip(text))
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("telegram send failed", "chat_id", chatID, "error", err)
	}
}

func (r *Router) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, clip(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("telegram send failed", "chat_id", chatID, "error", err)
	}
}

func clip(text string) string {
	if len(text) <= maxMessageLen {
		return text
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

const helpText = "Send a photo of your semester result sheet and I will read the courses and compute your SGPA.\n\n" +
	"Commands:\n" +
	"/sgpa - show the current table\n" +
	"/add <credits> <grade> <name> - add a course, all parts optional\n" +
	"/set <n> <code|name|credits|grade> <value> - edit course n\n" +
	"/del <n> - remove course n\n" +
	"/clear - remove every course\n" +
	"/predict <target> <credits>:<grade> ... - project SGPA with planned courses\n" +
	"/scale - show the grade scale"
