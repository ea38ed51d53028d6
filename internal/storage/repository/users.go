package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shizu-na/gomidashi-bot/internal/models"
)

// GetUser возвращает пользователя по его LINE ID.
// Если пользователь не зарегистрирован, возвращает ErrNotFound.
func (s *Storage) GetUser(ctx context.Context, lineUserID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT line_user_id, status, reminder_time_morning, reminder_time_night,
			      created_at, updated_at
			  FROM users
			  WHERE line_user_id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, lineUserID)

	var morning, night sql.NullString
	if err := row.Scan(&u.LineUserID, &u.Status, &morning, &night,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if morning.Valid {
		u.ReminderMorning = &morning.String
	}
	if night.Valid {
		u.ReminderNight = &night.String
	}
	return u, nil
}

// CreateUser регистрирует нового пользователя и в той же транзакции
// заполняет недельное расписание значениями по умолчанию: по воскресеньям
// вывоза нет, остальные дни не настроены.
func (s *Storage) CreateUser(ctx context.Context, lineUserID string) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO users (line_user_id, status) VALUES ($1, $2)`,
		lineUserID, models.UserStatusActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, day := range models.Weekdays {
		item := models.ItemUnset
		if day == "日曜日" {
			item = models.ItemNoCollection
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO schedules (line_user_id, day_of_week, item, note)
			 VALUES ($1, $2, $3, $4)`,
			lineUserID, day, item, models.NoteNone); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserStatus меняет статус пользователя (active/unsubscribed).
func (s *Storage) UpdateUserStatus(ctx context.Context, lineUserID, status string) error {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE line_user_id = $2`,
		status, lineUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateReminderTime устанавливает или сбрасывает (timeStr == nil) время
// напоминания для слота slot ("morning" или "night").
func (s *Storage) UpdateReminderTime(ctx context.Context, lineUserID, slot string, timeStr *string) error {
	const op = "storage.UpdateReminderTime"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var column string
	switch slot {
	case "morning":
		column = "reminder_time_morning"
	case "night":
		column = "reminder_time_night"
	default:
		return fmt.Errorf("%s: unknown reminder slot: %q", op, slot)
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s = $1, updated_at = NOW() WHERE line_user_id = $2`, column)
	res, err := s.DB.ExecContext(ctx, query, timeStr, lineUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListActiveUsers возвращает всех активных пользователей для обхода
// диспетчером напоминаний.
func (s *Storage) ListActiveUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListActiveUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT line_user_id, status, reminder_time_morning, reminder_time_night,
			      created_at, updated_at
			  FROM users
			  WHERE status = $1`
	rows, err := s.DB.QueryContext(ctx, query, models.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		var morning, night sql.NullString
		if err = rows.Scan(&u.LineUserID, &u.Status, &morning, &night,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if morning.Valid {
			u.ReminderMorning = &morning.String
		}
		if night.Valid {
			u.ReminderNight = &night.String
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IsOnReminderAllowlist проверяет, разрешена ли пользователю функция
// напоминаний. Список ведется вручную, бот его не изменяет.
func (s *Storage) IsOnReminderAllowlist(ctx context.Context, lineUserID string) (bool, error) {
	const op = "storage.IsOnReminderAllowlist"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reminder_allowlist WHERE line_user_id = $1)`,
		lineUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
