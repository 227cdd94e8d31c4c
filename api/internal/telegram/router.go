package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"aptitude-helper/api/internal/llm"
)

const maxMessageLen = 3900

// Sender: то, что роутеру нужно от *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot      Sender
	Engine   llm.Engine
	Log      *zap.Logger
	HTTP     *http.Client
	Debounce time.Duration

	batches  sync.Map // key -> *photoBatch
	problems sync.Map // chatID -> types.ProblemInfo
}

func NewRouter(bot Sender, eng llm.Engine, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		Bot:      bot,
		Engine:   eng,
		Log:      log,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
		Debounce: defaultDebounce,
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg)
	case msg.Voice != nil:
		r.acceptAudio(msg.Chat.ID, msg.Voice.FileID, msg.Voice.MimeType)
	case msg.Audio != nil:
		r.acceptAudio(msg.Chat.ID, msg.Audio.FileID, msg.Audio.MimeType)
	case strings.TrimSpace(msg.Text) != "":
		r.send(msg.Chat.ID, "Send a screenshot of the question, a voice message, or /debug <your solution>.")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send a screenshot of an aptitude question (several photos in one album are fine) and I will solve it.\n"+
			"Voice messages are transcribed and answered.\n"+
			"Commands: /debug <your solution> — review your solution of the last problem, /health")
	case "health":
		r.send(cid, "✅ OK ("+r.Engine.Name()+" "+r.Engine.GetModel()+")")
	case "debug":
		r.runDebug(context.Background(), cid, msg.CommandArguments(), nil)
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncateMessage(text, maxMessageLen))
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// truncateMessage режет по границе руны: Telegram отвергает битый UTF-8.
func truncateMessage(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func (r *Router) SendError(chatID int64, op string, err error) {
	r.Log.Warn("request failed", zap.Int64("chat_id", chatID), zap.String("op", op), zap.Error(err))
	r.send(chatID, fmt.Sprintf("❌ %s failed: %s", op, userMessage(err)))
}
