// redact маскирует чувствительные значения перед записью в лог.
package redact

import "strings"

// Token заменяет токен литералом; пустой токен остаётся пустым.
func Token(token string) string {
	if token == "" {
		return ""
	}

	return "[REDACTED_TOKEN]"
}

// Authorization маскирует credentials в значении заголовка Authorization,
// сохраняя схему ("Bearer [REDACTED_TOKEN]").
func Authorization(header string) string {
	scheme, creds, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return Token(header)
	}

	return scheme + " " + Token(strings.TrimSpace(creds))
}
