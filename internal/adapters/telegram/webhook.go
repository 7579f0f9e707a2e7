package telegram

import (
	"errors"
	"net/url"
	"strings"
)

// WebhookRoute шаблон маршрута вебхука для chi.
const WebhookRoute = "/webhook/{token}"

// WebhookPath путь вебхука для токена бота.
func WebhookPath(token string) string {
	return "/webhook/" + url.PathEscape(token)
}

// WebhookURL собирает публичный адрес вебхука. Схема во внешнем адресе
// необязательна, по умолчанию https.
func WebhookURL(externalURL, token string) (string, error) {
	base := strings.TrimSpace(externalURL)
	if base == "" {
		return "", errors.New("external url is empty")
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("external url has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/") + WebhookPath(token)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
