// Package timeslot определяет, попало ли настроенное время напоминания
// в окно текущего тика диспетчера.
package timeslot

import (
	"regexp"
	"time"
)

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Normalize приводит строку времени к формату "HH:mm" с ведущим нулем.
// Возвращает false, если строка не является временем суток.
func Normalize(s string) (string, bool) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	t, err := time.Parse("15:04", m[0])
	if err != nil {
		return "", false
	}
	return t.Format("15:04"), true
}

// Due сообщает, лежит ли настроенное время timeStr в окне [t, t+window)
// относительно now. Пустая или некорректная строка никогда не срабатывает.
// Сравнение идет по стеночным часам в зоне now, поэтому диспетчер и
// пользовательские настройки живут в одной временной зоне.
func Due(now time.Time, timeStr string, window time.Duration) bool {
	normalized, ok := Normalize(timeStr)
	if !ok {
		return false
	}
	target, err := time.ParseInLocation("15:04", normalized, now.Location())
	if err != nil {
		return false
	}
	target = time.Date(now.Year(), now.Month(), now.Day(),
		target.Hour(), target.Minute(), 0, 0, now.Location())

	diff := now.Sub(target)
	return diff >= 0 && diff < window
}
