package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
)

func testLimits() Limits {
	return Limits{ItemMaxLength: 20, NoteMaxLength: 50}
}

func TestAdvance_Cancel(t *testing.T) {
	sess := models.Session{
		Step:        models.StepAwaitingNote,
		Day:         "火曜日",
		CurrentItem: "資源ごみ",
		CurrentNote: "-",
		NewItem:     "燃えるごみ",
	}

	tr := advance(sess, line.TokenCancel, testLimits())

	assert.Nil(t, tr.Next, "отмена уничтожает сессию")
	assert.Nil(t, tr.Commit, "отмена ничего не сохраняет")
	require.Len(t, tr.Messages, 1)
}

func TestAdvance_UnknownStep(t *testing.T) {
	tr := advance(models.Session{Step: 0, Day: "火曜日"}, "text", testLimits())

	assert.Nil(t, tr.Next)
	assert.Nil(t, tr.Commit)
	require.Len(t, tr.Messages, 1)
}

func TestAdvanceItem(t *testing.T) {
	base := models.Session{
		Step:        models.StepAwaitingItem,
		Day:         "火曜日",
		CurrentItem: "資源ごみ",
		CurrentNote: "第2・第4のみ",
	}

	t.Run("новый вид мусора переводит к заметке", func(t *testing.T) {
		tr := advance(base, "燃えるごみ", testLimits())

		require.NotNil(t, tr.Next)
		assert.Equal(t, models.StepAwaitingNote, tr.Next.Step)
		assert.Equal(t, "燃えるごみ", tr.Next.NewItem)
		assert.Nil(t, tr.Commit)
	})

	t.Run("скип оставляет текущий вид", func(t *testing.T) {
		tr := advance(base, line.TokenSkip, testLimits())

		require.NotNil(t, tr.Next)
		assert.Equal(t, models.StepAwaitingNote, tr.Next.Step)
		assert.Empty(t, tr.Next.NewItem)
	})

	t.Run("слишком длинный ввод не двигает автомат", func(t *testing.T) {
		tr := advance(base, strings.Repeat("あ", 21), testLimits())

		require.NotNil(t, tr.Next)
		assert.Equal(t, models.StepAwaitingItem, tr.Next.Step)
		assert.Empty(t, tr.Next.NewItem)
		assert.Nil(t, tr.Commit)
	})

	t.Run("ровно на границе длины проходит", func(t *testing.T) {
		tr := advance(base, strings.Repeat("あ", 20), testLimits())

		require.NotNil(t, tr.Next)
		assert.Equal(t, models.StepAwaitingNote, tr.Next.Step)
	})
}

func TestAdvanceNote(t *testing.T) {
	base := models.Session{
		Step:        models.StepAwaitingNote,
		Day:         "火曜日",
		CurrentItem: "資源ごみ",
		CurrentNote: "第2・第4のみ",
	}

	t.Run("скип сохраняет текущую заметку", func(t *testing.T) {
		sess := base
		sess.NewItem = "燃えるごみ"

		tr := advance(sess, line.TokenSkip, testLimits())

		assert.Nil(t, tr.Next)
		require.NotNil(t, tr.Commit)
		assert.Equal(t, "火曜日", tr.Commit.Day)
		assert.Equal(t, "燃えるごみ", tr.Commit.Item)
		assert.Equal(t, "第2・第4のみ", tr.Commit.Note)
	})

	t.Run("なし сбрасывает заметку в сторожевое значение", func(t *testing.T) {
		tr := advance(base, line.TokenNoNote, testLimits())

		require.NotNil(t, tr.Commit)
		assert.Equal(t, models.NoteNone, tr.Commit.Note)
	})

	t.Run("два скипа подряд фиксируют снимок без изменений", func(t *testing.T) {
		tr := advance(base, line.TokenSkip, testLimits())

		require.NotNil(t, tr.Commit)
		assert.Equal(t, "資源ごみ", tr.Commit.Item)
		assert.Equal(t, "第2・第4のみ", tr.Commit.Note)
	})

	t.Run("слишком длинная заметка не двигает автомат", func(t *testing.T) {
		tr := advance(base, strings.Repeat("あ", 51), testLimits())

		require.NotNil(t, tr.Next)
		assert.Equal(t, models.StepAwaitingNote, tr.Next.Step)
		assert.Nil(t, tr.Commit)
	})

	t.Run("ведущий знак формулы экранируется", func(t *testing.T) {
		sess := base
		sess.NewItem = "=SUM(A1)"

		tr := advance(sess, "=1+2", testLimits())

		require.NotNil(t, tr.Commit)
		assert.Equal(t, "'=SUM(A1)", tr.Commit.Item)
		assert.Equal(t, "'=1+2", tr.Commit.Note)
	})

	t.Run("сторожевая заметка не экранируется", func(t *testing.T) {
		sess := base
		sess.CurrentNote = models.NoteNone

		tr := advance(sess, line.TokenSkip, testLimits())

		require.NotNil(t, tr.Commit)
		assert.Equal(t, models.NoteNone, tr.Commit.Note)
	})
}
