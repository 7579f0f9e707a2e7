package main

import "strings"

// redact скрывает токен бота в адресе вебхука.
func redact(webhookURL string) string {
	i := strings.LastIndex(webhookURL, "/webhook/")
	if i < 0 {
		return webhookURL
	}
	return webhookURL[:i] + "/webhook/***"
}
