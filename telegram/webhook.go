package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog"

	"timebot/service"
	"timebot/timeutil"
)

// Sender sends a text reply to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int) error
}

// BotSender is a Sender backed by a telego bot.
type BotSender struct {
	bot *telego.Bot
}

// NewBotSender constructs a BotSender for token against the Bot API at
// baseURL. An empty baseURL selects the public API.
func NewBotSender(token, baseURL string) (*BotSender, error) {
	var opts []telego.BotOption
	if baseURL != "" {
		opts = append(opts, telego.WithAPIServer(strings.TrimRight(baseURL, "/")))
	}
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &BotSender{bot: bot}, nil
}

// SendMessage posts a text message to a chat.
func (s *BotSender) SendMessage(_ context.Context, chatID int64, text string, replyTo int) error {
	params := tu.Message(tu.ID(chatID), text)
	if replyTo != 0 {
		params.ReplyParameters = &telego.ReplyParameters{MessageID: replyTo}
	}
	if _, err := s.bot.SendMessage(params); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

// Interpreter is the subset of service.Interpreter the handler uses.
type Interpreter interface {
	Resolve(ctx context.Context, now time.Time, q service.Query) (service.Answer, error)
	HistoryText(ctx context.Context, chatID int64, limit int) (string, error)
}

// WebhookHandler handles incoming Telegram webhook updates.
type WebhookHandler struct {
	sender       Sender
	interpreter  Interpreter
	mention      string
	historyLimit int
	now          func() time.Time
	log          zerolog.Logger
}

// NewWebhookHandler constructs a new WebhookHandler answering commands that
// follow mention, e.g. "@timebot when quarter to five".
func NewWebhookHandler(sender Sender, interpreter Interpreter, mention string, historyLimit int, loc *time.Location, logger zerolog.Logger) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &WebhookHandler{
		sender:       sender,
		interpreter:  interpreter,
		mention:      mention,
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().In(loc) },
		log:          logger,
	}
}

const helpText = "Ask me e.g. 'when quarter to five', 'when in 20 minutes' or 'when an hour before noon'."

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.log.Warn().Err(err).Msg("read body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var upd telego.Update
	if err := json.Unmarshal(body, &upd); err != nil {
		h.log.Warn().Err(err).Msg("invalid update json")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg := upd.Message
	if msg == nil && upd.ChannelPost != nil {
		msg = upd.ChannelPost
	}
	if msg == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	cmd, ok := parseCommand(msg.Text, h.mention)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	chatID := msg.Chat.ID
	reply := h.answer(ctx, chatID, cmd)
	if err := h.sender.SendMessage(ctx, chatID, reply, msg.MessageID); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send reply")
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) answer(ctx context.Context, chatID int64, cmd command) string {
	switch cmd.name {
	case "history":
		text, err := h.interpreter.HistoryText(ctx, chatID, h.historyLimit)
		if err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("history")
			return "Failed to load history. Please try again later."
		}
		return text
	case "when":
		if cmd.arg == "" {
			return helpText
		}
		now := h.now()
		ans, err := h.interpreter.Resolve(ctx, now, service.Query{ChatID: chatID, Text: cmd.arg})
		if err != nil {
			if errors.Is(err, timeutil.ErrNoValue) {
				return "That looks like a time, but I could not work out which one."
			}
			if errors.Is(err, service.ErrUnresolved) {
				return "Could not understand that time. " + helpText
			}
			h.log.Error().Err(err).Msg("resolve")
			return "Failed to resolve time. Please try again later."
		}
		return ans.Text(now)
	}
	return helpText
}

type command struct {
	name string
	arg  string
}

// parseCommand extracts the command following the mention. Examples:
//
//	"@timebot" -> help
//	"@timebot when quarter to five" -> when "quarter to five"
//	"@timebot in 20 minutes" -> when "in 20 minutes"
//	"@timebot history" -> history
func parseCommand(text, mention string) (command, bool) {
	if mention == "" {
		return command{}, false
	}
	idx := indexFold(text, mention)
	if idx == -1 {
		return command{}, false
	}

	after := strings.TrimSpace(text[idx+len(mention):])
	if after == "" {
		return command{name: "help"}, true
	}

	head, rest, _ := strings.Cut(after, " ")
	switch strings.ToLower(head) {
	case "history":
		return command{name: "history"}, true
	case "when", "time":
		return command{name: "when", arg: strings.TrimSpace(rest)}, true
	}
	return command{name: "when", arg: after}, true
}

// indexFold returns the byte offset in s of the first case-insensitive
// match of substr, or -1. Offsets always refer to s itself.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
