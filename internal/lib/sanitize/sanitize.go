// Package sanitize защищает свободный текст пользователя перед записью
// в табличное хранилище. Значение, начинающееся с символа формулы,
// при экспорте в электронную таблицу исполнилось бы как формула.
package sanitize

import "strings"

// Cell экранирует ведущий символ формулы ('=', '+', '-', '@')
// нейтрализующим апострофом.
func Cell(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}
