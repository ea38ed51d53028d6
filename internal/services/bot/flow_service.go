package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shizu-na/gomidashi-bot/internal/lib/sl"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

// startFlow открывает диалог редактирования дня day: снимает текущее
// состояние записи, кладет сессию в кеш с TTL и запрашивает позицию.
func (s *Service) startFlow(ctx context.Context, userID, day string) ([]line.Message, error) {
	const op = "bot.startFlow"

	currentItem := models.ItemUnset
	currentNote := models.ItemUnset
	entry, err := s.repo.GetScheduleEntry(ctx, userID, day)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		currentItem = entry.Item
		currentNote = entry.Note
	}

	sess := models.Session{
		Step:        models.StepAwaitingItem,
		Day:         day,
		CurrentItem: currentItem,
		CurrentNote: currentNote,
	}
	if err := s.sessions.Set(ctx, sessionKey(userID), sess, s.opts.SessionTTL); err != nil {
		return nil, err
	}

	s.log.Info("modification flow started",
		slog.String("op", op), slog.String("user_id", userID), slog.String("day", day))
	return []line.Message{line.NewItemPrompt(day)}, nil
}

// continueFlow выполняет один шаг диалога: переход считается чистой
// функцией advance, а все эффекты (кеш, БД, ответ) применяются здесь.
func (s *Service) continueFlow(ctx context.Context, replyToken, userID, text string, sess models.Session) {
	const op = "bot.continueFlow"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	t := advance(sess, text, s.opts.Limits)

	if t.Commit != nil {
		err := s.repo.UpsertScheduleEntry(ctx, userID, t.Commit.Day, t.Commit.Item, t.Commit.Note)
		if err != nil {
			log.Error("failed to commit schedule entry", sl.Err(err))
			if err := s.sessions.Invalidate(ctx, sessionKey(userID)); err != nil {
				log.Error("failed to drop session", sl.Err(err))
			}
			s.reply(ctx, replyToken, line.NewMenuMessage(line.TextUpdateFailed))
			return
		}
		log.Info("schedule entry updated", slog.String("day", t.Commit.Day))
	}

	if t.Next != nil {
		if err := s.sessions.Set(ctx, sessionKey(userID), *t.Next, s.opts.SessionTTL); err != nil {
			log.Error("failed to persist session", sl.Err(err))
			s.reply(ctx, replyToken, line.NewTextMessage(line.TextGenericError))
			return
		}
	} else {
		if err := s.sessions.Invalidate(ctx, sessionKey(userID)); err != nil {
			log.Error("failed to drop session", sl.Err(err))
		}
	}

	s.reply(ctx, replyToken, t.Messages...)
}
