package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shizu-na/gomidashi-bot/internal/models"
)

// ListSchedules возвращает все записи расписания пользователя
// в порядке дней недели начиная с понедельника.
func (s *Storage) ListSchedules(ctx context.Context, lineUserID string) ([]*models.ScheduleEntry, error) {
	const op = "storage.ListSchedules"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT line_user_id, day_of_week, item, note
			  FROM schedules
			  WHERE line_user_id = $1
			  ORDER BY array_position($2::text[], day_of_week)`
	rows, err := s.DB.QueryContext(ctx, query, lineUserID, weekdayArray())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ScheduleEntry
	for rows.Next() {
		var e models.ScheduleEntry
		if err = rows.Scan(&e.LineUserID, &e.Day, &e.Item, &e.Note); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetScheduleEntry возвращает запись расписания пользователя на один день.
// Если записи нет, возвращает ErrNotFound.
func (s *Storage) GetScheduleEntry(ctx context.Context, lineUserID, day string) (*models.ScheduleEntry, error) {
	const op = "storage.GetScheduleEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT line_user_id, day_of_week, item, note
			  FROM schedules
			  WHERE line_user_id = $1 AND day_of_week = $2`
	e := &models.ScheduleEntry{}
	row := s.DB.QueryRowContext(ctx, query, lineUserID, day)
	if err := row.Scan(&e.LineUserID, &e.Day, &e.Item, &e.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// UpsertScheduleEntry записывает позицию и заметку для дня недели.
// Строка создается, если посев при регистрации ее по какой-то причине
// не оставил.
func (s *Storage) UpsertScheduleEntry(ctx context.Context, lineUserID, day, item, note string) error {
	const op = "storage.UpsertScheduleEntry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO schedules (line_user_id, day_of_week, item, note)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (line_user_id, day_of_week)
			  DO UPDATE SET item = EXCLUDED.item, note = EXCLUDED.note`
	if _, err := s.DB.ExecContext(ctx, query, lineUserID, day, item, note); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func weekdayArray() string {
	out := "{"
	for i, day := range models.Weekdays {
		if i > 0 {
			out += ","
		}
		out += day
	}
	return out + "}"
}
