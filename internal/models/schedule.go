package models

// Значения по умолчанию для расписания. NoteNone — сторожевое значение
// "заметки нет", отличается от пустой строки, которую сюда не пишут.
const (
	ItemUnset        = "（未設定）"
	ItemNoCollection = "（回収なし）"
	NoteNone         = "-"
)

// ScheduleEntry одна строка недельного расписания пользователя.
// Для активного пользователя существует ровно семь записей, по одной на день.
type ScheduleEntry struct {
	LineUserID string
	Day        string
	Item       string
	Note       string
}

// HasNote сообщает, есть ли у записи содержательная заметка.
func (e *ScheduleEntry) HasNote() bool {
	return e.Note != "" && e.Note != NoteNone
}
