package bot

import (
	"fmt"
	"unicode/utf8"

	"github.com/shizu-na/gomidashi-bot/internal/lib/sanitize"
	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
)

// Limits границы длины свободного текста в диалоге редактирования.
type Limits struct {
	ItemMaxLength int
	NoteMaxLength int
}

// transition результат одного шага диалога. Next == nil означает, что
// сессию нужно уничтожить; Commit != nil — что итоговую запись нужно
// сохранить в хранилище.
type transition struct {
	Next     *models.Session
	Commit   *models.ScheduleEntry
	Messages []line.Message
}

// advance чистая функция перехода конечного автомата диалога:
// (сессия, ввод) -> (следующая сессия, эффекты). Не делает ввода-вывода,
// чем и проверяется в тестах.
func advance(sess models.Session, input string, limits Limits) transition {
	if input == line.TokenCancel {
		return transition{
			Messages: []line.Message{line.NewMenuMessage(line.TextCancelled)},
		}
	}

	switch sess.Step {
	case models.StepAwaitingItem:
		return advanceItem(sess, input, limits)
	case models.StepAwaitingNote:
		return advanceNote(sess, input, limits)
	default:
		// Сессия в нераспознанном состоянии: уничтожить и сообщить
		// о тайм-ауте.
		return transition{
			Messages: []line.Message{line.NewMenuMessage(line.TextFlowTimeout)},
		}
	}
}

func advanceItem(sess models.Session, input string, limits Limits) transition {
	if input != line.TokenSkip && utf8.RuneCountInString(input) > limits.ItemMaxLength {
		// Ошибка валидации не продвигает автомат: тот же шаг, повторный
		// запрос.
		return transition{
			Next: &sess,
			Messages: []line.Message{
				line.NewValidationError(fmt.Sprintf(line.TextItemTooLong, limits.ItemMaxLength)),
			},
		}
	}

	next := sess
	next.Step = models.StepAwaitingNote
	if input != line.TokenSkip {
		next.NewItem = input
	}
	return transition{
		Next:     &next,
		Messages: []line.Message{line.NewNotePrompt()},
	}
}

func advanceNote(sess models.Session, input string, limits Limits) transition {
	if input != line.TokenSkip && input != line.TokenNoNote &&
		utf8.RuneCountInString(input) > limits.NoteMaxLength {
		return transition{
			Next: &sess,
			Messages: []line.Message{
				line.NewValidationError(fmt.Sprintf(line.TextNoteTooLong, limits.NoteMaxLength)),
			},
		}
	}

	finalItem := sess.CurrentItem
	if sess.NewItem != "" {
		finalItem = sess.NewItem
	}

	finalNote := sess.CurrentNote
	switch input {
	case line.TokenSkip:
	case line.TokenNoNote:
		finalNote = models.NoteNone
	default:
		finalNote = input
	}

	// Сторожевое значение "-" не экранируется, иначе оно перестанет
	// распознаваться как "заметки нет".
	if finalNote != models.NoteNone {
		finalNote = sanitize.Cell(finalNote)
	}
	entry := &models.ScheduleEntry{
		Day:  sess.Day,
		Item: sanitize.Cell(finalItem),
		Note: finalNote,
	}

	title := "✅ 予定を更新しました"
	altText := fmt.Sprintf("【%s】の予定を「%s」に更新しました。", sess.Day, entry.Item)
	return transition{
		Commit: entry,
		Messages: []line.Message{
			line.NewSingleDayFlexMessage(title, sess.Day, entry.Item, entry.Note, altText, true),
		},
	}
}
