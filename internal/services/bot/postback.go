package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shizu-na/gomidashi-bot/internal/lib/sl"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

// TTL ключа-замка от двойного нажатия кнопки "変更".
const debounceTTL = 2 * time.Second

func (s *Service) handlePostback(ctx context.Context, event line.Event) {
	const op = "bot.handlePostback"
	log := s.log.With(slog.String("op", op), slog.String("user_id", event.Source.UserID))

	if event.Postback == nil {
		return
	}
	params := line.ParsePostbackData(event.Postback.Data)
	userID := event.Source.UserID

	switch params["action"] {
	case "agreeToTerms":
		s.handleTermsAgreement(ctx, event.ReplyToken, userID)
	case "disagreeToTerms":
		s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextTermsDisagreed))
	case "setReminderTime":
		s.handleSetReminderTime(ctx, event.ReplyToken, userID, event.Postback.Params.Time, params["type"])
	case "stopReminder":
		slotLabel := "朝"
		if params["type"] == "night" {
			slotLabel = "夜"
		}
		msgs, err := s.stopReminder(ctx, userID, params["type"], slotLabel)
		if err != nil {
			log.Error("failed to stop reminder", sl.Err(err))
			s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextGenericError))
			return
		}
		s.reply(ctx, event.ReplyToken, msgs...)
	case "startChange":
		s.handleStartChange(ctx, event.ReplyToken, userID, params["day"])
	default:
		log.Debug("unknown postback action", slog.String("data", event.Postback.Data))
	}
}

func (s *Service) handleTermsAgreement(ctx context.Context, replyToken, userID string) {
	const op = "bot.handleTermsAgreement"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("failed to load user", sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}

	if user != nil {
		if user.IsActive() {
			s.reply(ctx, replyToken, line.NewMenuMessage(line.TextAlreadyActive))
			return
		}
		s.handleReactivation(ctx, replyToken, userID, "利用を再開する")
		return
	}

	if err := s.repo.CreateUser(ctx, userID); err != nil {
		log.Error("failed to register user", sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}
	log.Info("new user registered")
	s.reply(ctx, replyToken, line.NewMenuMessage(line.TextTermsAgreed))
}

func (s *Service) handleSetReminderTime(ctx context.Context, replyToken, userID, timeStr, slot string) {
	const op = "bot.handleSetReminderTime"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	if err := s.validate.Var(timeStr, "required,datetime=15:04"); err != nil {
		log.Error("invalid reminder time from picker", slog.String("time", timeStr), sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}

	if err := s.repo.UpdateReminderTime(ctx, userID, slot, &timeStr); err != nil {
		log.Error("failed to set reminder time", sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}

	slotLabel := "朝"
	if slot == "night" {
		slotLabel = "夜"
	}
	log.Info("reminder time set", slog.String("slot", slot), slog.String("time", timeStr))
	s.reply(ctx, replyToken,
		line.NewMenuMessage(fmt.Sprintf(line.TextReminderSetFormat, slotLabel, timeStr)))
}

func (s *Service) handleStartChange(ctx context.Context, replyToken, userID, day string) {
	const op = "bot.handleStartChange"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	canonical, err := models.ParseWeekday(day)
	if err != nil {
		log.Error("bad day in postback", slog.String("day", day))
		s.reply(ctx, replyToken, line.NewFallbackMessage())
		return
	}

	// Двойное нажатие по карточке гасится замком, это не механизм
	// корректности: проигравший просто не откроет второй диалог.
	acquired, err := s.sessions.AcquireLock(ctx, debounceKey(userID), debounceTTL)
	if err != nil {
		log.Error("failed to acquire debounce lock", sl.Err(err))
	} else if !acquired {
		log.Debug("duplicate tap suppressed")
		return
	}

	msgs, err := s.startFlow(ctx, userID, canonical)
	if err != nil {
		log.Error("failed to start modification flow", sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}
	s.reply(ctx, replyToken, msgs...)
}
