package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-support-bot/internal/adapters/telegram"
	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/cache"
	"tg-support-bot/internal/infra/metrics"
	"tg-support-bot/internal/usecase/support"
)

// API часть tgbotapi.BotAPI, которой пользуется обработчик.
type API interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler обслуживает вебхук бота.
type Handler struct {
	api      API
	log      zerolog.Logger
	support  *support.Service
	dedup    domain.Cache
	dedupTTL time.Duration
}

// NewHandler создаёт обработчик. dedup может быть nil.
func NewHandler(api API, log zerolog.Logger, supportUC *support.Service, dedup domain.Cache, dedupTTL time.Duration) *Handler {
	if dedup == nil {
		dedup = cache.Nop{}
	}
	return &Handler{api: api, log: log, support: supportUC, dedup: dedup, dedupTTL: dedupTTL}
}

// HandleUpdate обрабатывает входящий апдейт не более одного раза.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	key := "update:" + strconv.Itoa(upd.UpdateID)
	err := h.dedup.Once(ctx, key, h.dedupTTL, func() error {
		h.dispatch(ctx, upd)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrSeen):
		metrics.DuplicateUpdates.Inc()
		h.log.Debug().Int("update_id", upd.UpdateID).Msg("повторный апдейт пропущен")
	default:
		h.log.Warn().Err(err).Int("update_id", upd.UpdateID).Msg("дедупликация недоступна, обрабатываем апдейт")
		h.dispatch(ctx, upd)
	}
}

func (h *Handler) dispatch(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		metrics.UpdatesTotal.WithLabelValues("message").Inc()
		h.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		h.handleCallback(ctx, upd.CallbackQuery)
	default:
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Text == "" {
		return
	}
	r, ok := h.support.HandleMessage(ctx, msg.Text, senderOf(msg.Chat.ID, msg.From))
	if !ok {
		h.log.Debug().Int64("chat", msg.Chat.ID).Msg("сообщение без ответа")
		return
	}
	h.reply(msg.Chat.ID, r)
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	var chatID int64
	if cb.Message != nil && cb.Message.Chat != nil {
		chatID = cb.Message.Chat.ID
	}
	r, ok := h.support.HandleCallback(ctx, cb.Data, senderOf(chatID, cb.From))
	if ok {
		switch {
		case r.Edit:
			h.edit(cb, r)
		case chatID != 0:
			h.reply(chatID, r)
		}
	} else {
		h.log.Debug().Str("data", cb.Data).Msg("неизвестный callback")
	}
	start := time.Now()
	_, err := h.api.Request(tgbotapi.NewCallback(cb.ID, ""))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось ответить на callback")
	}
}

func (h *Handler) reply(chatID int64, r support.Reply) {
	parts := telegram.SplitMessage(r.Text, telegram.MessageLimit)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if r.Markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if i == len(parts)-1 {
			if kb := keyboard(r.Keyboard); kb != nil {
				msg.ReplyMarkup = kb
			}
		}
		if err := h.send(msg, "send_message"); err != nil {
			return
		}
	}
}

func (h *Handler) edit(cb *tgbotapi.CallbackQuery, r support.Reply) {
	var cfg tgbotapi.EditMessageTextConfig
	switch {
	case cb.Message != nil && cb.Message.Chat != nil:
		cfg = tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, r.Text)
	case cb.InlineMessageID != "":
		cfg = tgbotapi.EditMessageTextConfig{BaseEdit: tgbotapi.BaseEdit{InlineMessageID: cb.InlineMessageID}, Text: r.Text}
	default:
		return
	}
	if r.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	cfg.ReplyMarkup = keyboard(r.Keyboard)
	_ = h.send(cfg, "edit_message")
}

// send отправляет запрос. Если Telegram не смог разобрать Markdown,
// повторяет без разметки.
func (h *Handler) send(c tgbotapi.Chattable, op string) error {
	err := h.do(c, op)
	if err == nil {
		return nil
	}
	if isNotModified(err) {
		h.log.Debug().Str("op", op).Msg("сообщение не изменилось")
		return nil
	}
	if plain, ok := withoutMarkdown(c); ok && isParseError(err) {
		h.log.Warn().Err(err).Str("op", op).Msg("Markdown отклонён, отправляем без разметки")
		if err = h.do(plain, op); err == nil {
			return nil
		}
	}
	metrics.BotSendErrors.Inc()
	h.log.Error().Err(err).Str("op", op).Msg("не удалось отправить сообщение")
	return err
}

func (h *Handler) do(c tgbotapi.Chattable, op string) error {
	start := time.Now()
	_, err := h.api.Request(c)
	metrics.ObserveNetworkRequest("telegram_bot", op, start, err)
	return err
}

// withoutMarkdown возвращает копию запроса без parse mode.
func withoutMarkdown(c tgbotapi.Chattable) (tgbotapi.Chattable, bool) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		if v.ParseMode == "" {
			return nil, false
		}
		v.ParseMode = ""
		return v, true
	case tgbotapi.EditMessageTextConfig:
		if v.ParseMode == "" {
			return nil, false
		}
		v.ParseMode = ""
		return v, true
	}
	return nil, false
}

func keyboard(rows [][]support.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &markup
}

func senderOf(chatID int64, u *tgbotapi.User) support.Sender {
	s := support.Sender{ChatID: chatID}
	if u != nil {
		s.UserID = u.ID
		s.FirstName = u.FirstName
	}
	return s
}

func isParseError(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "can't parse entities")
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}
