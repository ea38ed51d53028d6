// Package bot содержит бизнес-логику обработки событий вебхука LINE:
// диспетчеризацию команд, диалог редактирования расписания и регистрацию.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shizu-na/gomidashi-bot/internal/lib/sl"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/metrics"
	"github.com/shizu-na/gomidashi-bot/internal/models"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные боту.
type Repository interface {
	// GetUser возвращает пользователя или repository.ErrNotFound.
	GetUser(ctx context.Context, lineUserID string) (*models.User, error)
	// CreateUser регистрирует пользователя и засеивает расписание.
	CreateUser(ctx context.Context, lineUserID string) error
	// UpdateUserStatus переключает active/unsubscribed.
	UpdateUserStatus(ctx context.Context, lineUserID, status string) error
	// UpdateReminderTime ставит или сбрасывает время слота напоминания.
	UpdateReminderTime(ctx context.Context, lineUserID, slot string, timeStr *string) error
	// ListSchedules возвращает неделю пользователя по порядку дней.
	ListSchedules(ctx context.Context, lineUserID string) ([]*models.ScheduleEntry, error)
	// GetScheduleEntry возвращает запись одного дня или ErrNotFound.
	GetScheduleEntry(ctx context.Context, lineUserID, day string) (*models.ScheduleEntry, error)
	// UpsertScheduleEntry фиксирует итог диалога редактирования.
	UpsertScheduleEntry(ctx context.Context, lineUserID, day, item, note string) error
	// IsOnReminderAllowlist проверяет доступ к напоминаниям.
	IsOnReminderAllowlist(ctx context.Context, lineUserID string) (bool, error)
}

// SessionStore описывает кеш сессий диалога с TTL.
type SessionStore interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Sender отправляет сообщения в LINE.
type Sender interface {
	Reply(ctx context.Context, replyToken string, messages []line.Message) error
	Push(ctx context.Context, to string, messages []line.Message) error
}

// Options настройки логики бота.
type Options struct {
	TermsURL   string
	SessionTTL time.Duration
	Limits     Limits
	Location   *time.Location
}

// Service обрабатывает события вебхука.
type Service struct {
	repo     Repository
	sessions SessionStore
	sender   Sender
	log      *slog.Logger
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, sessions SessionStore, sender Sender, log *slog.Logger, opts Options) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		sender:   sender,
		log:      log,
		validate: validator.New(),
		opts:     opts,
		now:      time.Now,
	}
}

func sessionKey(lineUserID string) string {
	return "session:" + lineUserID
}

func debounceKey(lineUserID string) string {
	return "debounce:" + lineUserID
}

// HandleEvent обрабатывает одно событие вебхука. Паника в обработчике
// не должна оставить событие без ответа, поэтому здесь стоит recover
// с извинением пользователю.
func (s *Service) HandleEvent(ctx context.Context, event line.Event) {
	log := s.log.With(slog.String("user_id", event.Source.UserID),
		slog.String("event_type", event.Type))
	metrics.WebhookEvents(event.Type)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling event", slog.Any("panic", r))
			if event.ReplyToken != "" {
				s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextUnexpectedError))
			}
		}
	}()

	switch event.Type {
	case line.EventTypeMessage:
		s.handleMessage(ctx, event)
	case line.EventTypeFollow:
		s.handleFollow(ctx, event)
	case line.EventTypePostback:
		s.handlePostback(ctx, event)
	default:
		log.Debug("ignoring event of unsupported type")
	}
}

func (s *Service) handleMessage(ctx context.Context, event line.Event) {
	const op = "bot.handleMessage"
	log := s.log.With(slog.String("op", op), slog.String("user_id", event.Source.UserID))

	if event.Message == nil || event.Message.Type != "text" {
		return
	}
	userID := event.Source.UserID
	text := trimmedText(event.Message.Text)

	// Незавершенный диалог редактирования имеет приоритет над командами.
	var sess models.Session
	found, err := s.sessions.Get(ctx, sessionKey(userID), &sess)
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextGenericError))
		return
	}
	if found {
		s.continueFlow(ctx, event.ReplyToken, userID, text, sess)
		return
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Незарегистрированный пользователь сперва принимает условия.
			// Согласие текстом равносильно нажатию кнопки на карточке.
			switch text {
			case "利用規約に同意する":
				s.handleTermsAgreement(ctx, event.ReplyToken, userID)
			case "利用規約に同意しない":
				s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextTermsDisagreed))
			default:
				s.reply(ctx, event.ReplyToken, line.NewTermsAgreementFlexMessage(s.opts.TermsURL))
			}
			return
		}
		log.Error("failed to load user", sl.Err(err))
		s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextGenericError))
		return
	}

	if !user.IsActive() {
		s.handleReactivation(ctx, event.ReplyToken, userID, text)
		return
	}

	msgs, err := s.dispatch(ctx, user, text)
	if err != nil {
		log.Error("command failed", slog.String("text", text), sl.Err(err))
		s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextGenericError))
		return
	}
	if msgs == nil {
		// Неизвестная команда: всегда меню, никогда молчание.
		s.reply(ctx, event.ReplyToken, line.NewFallbackMessage())
		return
	}
	s.reply(ctx, event.ReplyToken, msgs...)
}

func (s *Service) handleFollow(ctx context.Context, event line.Event) {
	const op = "bot.handleFollow"
	log := s.log.With(slog.String("op", op), slog.String("user_id", event.Source.UserID))

	user, err := s.repo.GetUser(ctx, event.Source.UserID)
	switch {
	case err != nil && errors.Is(err, repository.ErrNotFound):
		s.reply(ctx, event.ReplyToken,
			line.NewTextMessage(line.TextFollowNew),
			line.NewTextMessage(line.TextBotDescription),
			line.NewTermsAgreementFlexMessage(s.opts.TermsURL),
		)
	case err != nil:
		log.Error("failed to load user", sl.Err(err))
		s.reply(ctx, event.ReplyToken, line.NewTextMessage(line.TextGenericError))
	case user.IsActive():
		s.reply(ctx, event.ReplyToken, line.NewMenuMessage(line.TextFollowWelcomeBack))
	default:
		s.reply(ctx, event.ReplyToken, line.NewReactivationPrompt(line.TextFollowRejoin))
	}
}

func (s *Service) handleReactivation(ctx context.Context, replyToken, userID, text string) {
	const op = "bot.handleReactivation"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	if text != "利用を再開する" {
		s.reply(ctx, replyToken, line.NewReactivationPrompt(line.TextSuspended))
		return
	}
	if err := s.repo.UpdateUserStatus(ctx, userID, models.UserStatusActive); err != nil {
		log.Error("failed to reactivate user", sl.Err(err))
		s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
		return
	}
	log.Info("user reactivated")
	s.reply(ctx, replyToken, line.NewMenuMessage(line.TextReactivated))
}

func (s *Service) reply(ctx context.Context, replyToken string, messages ...line.Message) {
	if err := s.sender.Reply(ctx, replyToken, messages); err != nil {
		s.log.Error("failed to send reply", sl.Err(err))
		return
	}
	metrics.RepliesSent()
}
