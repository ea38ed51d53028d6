package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

var (
	changeCommandPattern       = regexp.MustCompile(`^(月|火|水|木|金|土|日)曜日の変更$`)
	stopReminderCommandPattern = regexp.MustCompile(`^(夜|朝)のリマインドを停止$`)
)

func trimmedText(s string) string {
	return strings.TrimSpace(s)
}

// dispatch сопоставляет текст команды с обработчиком. Порядок фиксирован:
// сначала точные команды, затем шаблонные. Возвращает nil без ошибки,
// если команда не распознана — вызывающая сторона шлет запасное меню.
func (s *Service) dispatch(ctx context.Context, user *models.User, text string) ([]line.Message, error) {
	switch text {
	case "今日", "きょう":
		return s.dayQuery(ctx, user.LineUserID, models.TodayLabel(s.now(), s.opts.Location), "今日のごみ🗑️", text)
	case "明日", "あした":
		return s.dayQuery(ctx, user.LineUserID, models.TomorrowLabel(s.now(), s.opts.Location), "明日のごみ🗑️", text)
	case "一覧":
		return s.scheduleList(ctx, user.LineUserID)
	case "使い方", "ヘルプ":
		return []line.Message{line.NewHelpFlexMessage()}, nil
	case "退会":
		return s.unregister(ctx, user.LineUserID)
	case "リマインダー":
		return s.reminderManagement(ctx, user)
	}

	if m := changeCommandPattern.FindStringSubmatch(text); m != nil {
		day, err := models.ParseWeekday(m[1])
		if err != nil {
			return nil, err
		}
		return s.startFlow(ctx, user.LineUserID, day)
	}

	if m := stopReminderCommandPattern.FindStringSubmatch(text); m != nil {
		slot := "morning"
		if m[1] == "夜" {
			slot = "night"
		}
		return s.stopReminder(ctx, user.LineUserID, slot, m[1])
	}

	return nil, nil
}

func (s *Service) dayQuery(ctx context.Context, userID, day, title, command string) ([]line.Message, error) {
	entry, err := s.repo.GetScheduleEntry(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []line.Message{
				line.NewMenuMessage(fmt.Sprintf(line.TextDayNotFound, command)),
			}, nil
		}
		return nil, err
	}

	altText := fmt.Sprintf("%sのごみは「%s」です。", day, entry.Item)
	return []line.Message{
		line.NewSingleDayFlexMessage(title, day, entry.Item, entry.Note, altText, true),
	}, nil
}

func (s *Service) scheduleList(ctx context.Context, userID string) ([]line.Message, error) {
	entries, err := s.repo.ListSchedules(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []line.Message{line.NewMenuMessage(line.TextScheduleEmpty)}, nil
	}
	return []line.Message{
		line.NewScheduleCarousel(entries),
		line.NewTextMessage(line.TextSchedulePrompt),
	}, nil
}

func (s *Service) unregister(ctx context.Context, userID string) ([]line.Message, error) {
	if err := s.repo.UpdateUserStatus(ctx, userID, models.UserStatusUnsubscribed); err != nil {
		return nil, err
	}
	s.log.Info("user unsubscribed", "user_id", userID)
	return []line.Message{line.NewTextMessage(line.TextUnsubscribed)}, nil
}

func (s *Service) reminderManagement(ctx context.Context, user *models.User) ([]line.Message, error) {
	allowed, err := s.repo.IsOnReminderAllowlist(ctx, user.LineUserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return []line.Message{line.NewTextMessage(line.TextReminderNotAllowed)}, nil
	}

	var night, morning string
	if user.ReminderNight != nil {
		night = *user.ReminderNight
	}
	if user.ReminderMorning != nil {
		morning = *user.ReminderMorning
	}
	return []line.Message{line.NewReminderManagementFlexMessage(night, morning)}, nil
}

func (s *Service) stopReminder(ctx context.Context, userID, slot, slotLabel string) ([]line.Message, error) {
	if err := s.repo.UpdateReminderTime(ctx, userID, slot, nil); err != nil {
		return nil, err
	}
	return []line.Message{
		line.NewMenuMessage(fmt.Sprintf(line.TextReminderStopFormat, slotLabel)),
	}, nil
}
