// Package validation содержит проверки и нормализацию входных данных продажи.
package validation

import "strings"

// countryCode — международный код Саудовской Аравии без знака «+».
const countryCode = "966"

// NormalizePhone приводит номер телефона к международному формату,
// принимаемому мессенджером: отбрасывает все символы кроме цифр, заменяет
// ведущий «0» на код страны, добавляет код страны к девятизначному
// абонентскому номеру и оставляет номер без изменений, если код уже есть.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()

	switch {
	case strings.HasPrefix(p, "0"):
		return countryCode + p[1:]
	case len(p) == 9:
		// Девятизначный абонентский номер без кода страны.
		return countryCode + p
	case strings.HasPrefix(p, countryCode):
		return p
	default:
		return countryCode + p
	}
}
