package bot

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	httpinfra "tg-support-bot/internal/infra/http"
)

const maxUpdateBytes = 1 << 20

// Webhook возвращает HTTP-обработчик для маршрута telegram.WebhookRoute.
// Чужой токен в пути даёт 404, как и отсутствующий маршрут.
func (h *Handler) Webhook(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(chi.URLParam(r, "token")), []byte(token)) != 1 {
			http.NotFound(w, r)
			return
		}
		var update tgbotapi.Update
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBytes)).Decode(&update); err != nil {
			httpinfra.WriteError(w, http.StatusBadRequest, "invalid update payload")
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	}
}
