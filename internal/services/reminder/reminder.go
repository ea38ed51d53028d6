// Package reminder реализует диспетчер напоминаний: периодический обход
// активных пользователей и отправка push-сообщений, чье настроенное время
// попало в окно текущего тика.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shizu-na/gomidashi-bot/internal/lib/sl"
	"github.com/shizu-na/gomidashi-bot/internal/lib/timeslot"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/metrics"
	"github.com/shizu-na/gomidashi-bot/internal/models"
)

// Repository методы хранилища, нужные диспетчеру.
type Repository interface {
	ListActiveUsers(ctx context.Context) ([]*models.User, error)
	GetScheduleEntry(ctx context.Context, lineUserID, day string) (*models.ScheduleEntry, error)
}

// Pusher отправляет push-сообщения пользователю.
type Pusher interface {
	Push(ctx context.Context, to string, messages []line.Message) error
}

// Service диспетчер напоминаний.
type Service struct {
	repo     Repository
	pusher   Pusher
	log      *slog.Logger
	loc      *time.Location
	interval time.Duration
}

// New создает новый экземпляр Service. Интервал тика одновременно служит
// окном допуска: каждое настроенное время при штатной работе срабатывает
// ровно один раз в сутки, пропущенный тик не наверстывается.
func New(repo Repository, pusher Pusher, log *slog.Logger, loc *time.Location, interval time.Duration) *Service {
	return &Service{
		repo:     repo,
		pusher:   pusher,
		log:      log,
		loc:      loc,
		interval: interval,
	}
}

// Run крутит тики до отмены контекста. Первый обход выполняется сразу.
func (s *Service) Run(ctx context.Context) {
	s.Tick(ctx, time.Now().In(s.loc))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder dispatcher stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.In(s.loc))
		}
	}
}

// Tick один обход всех активных пользователей. Ошибка отправки одному
// пользователю не прерывает обход остальных.
func (s *Service) Tick(ctx context.Context, now time.Time) {
	log := s.log.With(slog.String("run_id", uuid.NewString()))

	users, err := s.repo.ListActiveUsers(ctx)
	if err != nil {
		log.Error("failed to list active users", sl.Err(err))
		return
	}
	log.Debug("reminder tick", slog.Int("active_users", len(users)),
		slog.Time("now", now))

	for _, user := range users {
		if user.ReminderNight != nil {
			s.checkSlot(ctx, log, user, "night", *user.ReminderNight, now)
		}
		if user.ReminderMorning != nil {
			s.checkSlot(ctx, log, user, "morning", *user.ReminderMorning, now)
		}
	}
}

func (s *Service) checkSlot(ctx context.Context, log *slog.Logger, user *models.User, slot, timeStr string, now time.Time) {
	if !timeslot.Due(now, timeStr, s.interval) {
		return
	}

	var targetDay, title, dayLabel string
	if slot == "night" {
		// Вечернее напоминание говорит о завтрашнем вывозе.
		targetDay = models.TomorrowLabel(now, s.loc)
		title = "リマインダー🔔 (夜)"
		dayLabel = fmt.Sprintf("明日のごみ (%s)", targetDay)
	} else {
		targetDay = models.TodayLabel(now, s.loc)
		title = "リマインダー☀️ (朝)"
		dayLabel = fmt.Sprintf("今日のごみ (%s)", targetDay)
	}

	entry, err := s.repo.GetScheduleEntry(ctx, user.LineUserID, targetDay)
	if err != nil {
		// Отсутствующая запись — не ошибка: посев мог не пройти,
		// напоминание просто пропускается.
		log.Warn("no schedule entry for reminder",
			slog.String("user_id", user.LineUserID), slog.String("day", targetDay), sl.Err(err))
		return
	}

	altText := fmt.Sprintf("【リマインダー】%sのごみは「%s」です。", targetDay, entry.Item)
	msg := line.NewSingleDayFlexMessage(title, dayLabel, entry.Item, entry.Note, altText, true)

	if err := s.pusher.Push(ctx, user.LineUserID, []line.Message{msg}); err != nil {
		metrics.ReminderFailed()
		log.Error("failed to push reminder",
			slog.String("user_id", user.LineUserID), slog.String("slot", slot), sl.Err(err))
		return
	}
	metrics.RemindersSent(slot)
	log.Info("reminder sent",
		slog.String("user_id", user.LineUserID), slog.String("slot", slot),
		slog.String("day", targetDay))
}
