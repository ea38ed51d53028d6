// Package metrics содержит счетчики prometheus для вебхука и диспетчера
// напоминаний.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Number of webhook events received, by event type",
		},
		[]string{"type"},
	)

	repliesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replies_sent_total",
			Help: "Number of reply messages successfully sent",
		},
	)

	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Number of reminder push messages sent, by slot",
		},
		[]string{"slot"},
	)

	reminderFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_failures_total",
			Help: "Number of reminder push attempts that failed",
		},
	)
)

// Init регистрирует метрики в реестре по умолчанию.
func Init() {
	prometheus.MustRegister(webhookEventsTotal)
	prometheus.MustRegister(repliesSentTotal)
	prometheus.MustRegister(remindersSentTotal)
	prometheus.MustRegister(reminderFailuresTotal)
}

// WebhookEvents учитывает принятое событие вебхука.
func WebhookEvents(eventType string) {
	webhookEventsTotal.WithLabelValues(eventType).Inc()
}

// RepliesSent учитывает успешно отправленный ответ.
func RepliesSent() {
	repliesSentTotal.Inc()
}

// RemindersSent учитывает отправленное напоминание слота slot.
func RemindersSent(slot string) {
	remindersSentTotal.WithLabelValues(slot).Inc()
}

// ReminderFailed учитывает неудачную попытку отправки напоминания.
func ReminderFailed() {
	reminderFailuresTotal.Inc()
}
