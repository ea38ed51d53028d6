// Package models содержит доменные структуры бота: пользователей,
// недельное расписание вывоза мусора и состояние диалога редактирования.
package models

import "time"

// Статусы пользователя. Удаление всегда логическое, запись остается.
const (
	UserStatusActive       = "active"
	UserStatusUnsubscribed = "unsubscribed"
)

// User описывает зарегистрированного пользователя LINE.
// ReminderMorning и ReminderNight хранят время в формате "HH:mm",
// nil означает, что напоминание для слота выключено.
type User struct {
	LineUserID      string
	Status          string
	ReminderMorning *string
	ReminderNight   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive сообщает, доступны ли пользователю основные команды.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
