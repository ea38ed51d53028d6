package line

import (
	"fmt"
	"strings"

	"github.com/shizu-na/gomidashi-bot/internal/models"
)

// Небольшие конструкторы Flex-компонентов. Контейнеры собираются как
// map[string]any, потому что схема Flex Message слишком разнородна
// для выделенных структур.

func flexBox(layout string, contents []any, extra map[string]any) map[string]any {
	box := map[string]any{
		"type":     "box",
		"layout":   layout,
		"contents": contents,
	}
	for k, v := range extra {
		box[k] = v
	}
	return box
}

func flexText(text string, extra map[string]any) map[string]any {
	t := map[string]any{
		"type": "text",
		"text": text,
	}
	for k, v := range extra {
		t[k] = v
	}
	return t
}

func flexButton(action map[string]any, extra map[string]any) map[string]any {
	b := map[string]any{
		"type":   "button",
		"action": action,
	}
	for k, v := range extra {
		b[k] = v
	}
	return b
}

func flexSeparator() map[string]any {
	return map[string]any{"type": "separator", "margin": "lg"}
}

// NewSingleDayFlexMessage карточка одного дня: заголовок, день, позиция
// и заметка (сторожевое значение "-" скрывается).
func NewSingleDayFlexMessage(title, day, item, note, altText string, withMenu bool) FlexMessage {
	body := []any{
		flexText("品目", map[string]any{"size": "sm", "color": "#aaaaaa"}),
		flexText(item, map[string]any{"wrap": true, "weight": "bold", "size": "md"}),
	}
	if note != "" && note != models.NoteNone {
		body = append(body,
			flexSeparator(),
			flexText("メモ", map[string]any{"size": "sm", "color": "#aaaaaa", "margin": "lg"}),
			flexText(note, map[string]any{"wrap": true}),
		)
	}

	bubble := map[string]any{
		"type": "bubble",
		"header": flexBox("vertical", []any{
			flexText(title, map[string]any{"weight": "bold", "size": "sm", "color": "#888888"}),
			flexText(day, map[string]any{"weight": "bold", "size": "xl", "color": "#176FB8"}),
		}, nil),
		"body": flexBox("vertical", body, map[string]any{"spacing": "md"}),
	}

	msg := FlexMessage{
		Type:     "flex",
		AltText:  altText,
		Contents: bubble,
	}
	if withMenu {
		msg.QuickReply = menuQuickReply()
	}
	return msg
}

// NewScheduleCarousel карусель недельного расписания. Нажатие на карточку
// запускает диалог изменения этого дня через postback.
func NewScheduleCarousel(entries []*models.ScheduleEntry) FlexMessage {
	bubbles := make([]any, 0, len(entries))
	for _, e := range entries {
		body := []any{
			flexText("品目", map[string]any{"size": "sm", "color": "#aaaaaa"}),
			flexText(e.Item, map[string]any{"wrap": true, "weight": "bold", "size": "md"}),
		}
		if e.HasNote() {
			body = append(body,
				flexSeparator(),
				flexText("メモ", map[string]any{"size": "sm", "color": "#aaaaaa", "margin": "lg"}),
				flexText(e.Note, map[string]any{"wrap": true}),
			)
		}
		bubble := map[string]any{
			"type":   "bubble",
			"size":   "micro",
			"action": postbackAction("変更", "action=startChange&day="+e.Day),
			"header": flexBox("vertical", []any{
				flexText(strings.TrimSuffix(e.Day, "曜日"), map[string]any{
					"weight": "bold", "size": "xl", "color": "#176FB8", "align": "center",
				}),
			}, map[string]any{"paddingAll": "10px", "backgroundColor": "#f0f8ff"}),
			"body": flexBox("vertical", body, map[string]any{"spacing": "md"}),
		}
		bubbles = append(bubbles, bubble)
	}

	return FlexMessage{
		Type:    "flex",
		AltText: "ごみ出しスケジュール一覧",
		Contents: map[string]any{
			"type":     "carousel",
			"contents": bubbles,
		},
	}
}

// NewHelpFlexMessage карточка с кратким описанием команд.
func NewHelpFlexMessage() FlexMessage {
	rows := []any{
		helpRow("一覧", "1週間の予定を表示・編集"),
		helpRow("今日 / 明日", "その日のごみを確認"),
		helpRow("リマインダー", "毎日の通知を設定"),
		helpRow("退会", "利用を停止する"),
	}
	bubble := map[string]any{
		"type": "bubble",
		"header": flexBox("vertical", []any{
			flexText("使い方ガイド", map[string]any{"weight": "bold", "size": "lg", "color": "#176FB8"}),
		}, nil),
		"body": flexBox("vertical", rows, map[string]any{"spacing": "md"}),
	}
	return FlexMessage{
		Type:       "flex",
		AltText:    "使い方ガイド",
		Contents:   bubble,
		QuickReply: menuQuickReply(),
	}
}

func helpRow(command, description string) map[string]any {
	return flexBox("vertical", []any{
		flexText(command, map[string]any{"weight": "bold", "size": "sm"}),
		flexText(description, map[string]any{"size": "sm", "color": "#888888", "wrap": true}),
	}, nil)
}

// NewTermsAgreementFlexMessage предлагает принять условия использования.
func NewTermsAgreementFlexMessage(termsURL string) FlexMessage {
	bubble := map[string]any{
		"type": "bubble",
		"body": flexBox("vertical", []any{
			flexText("ご利用前に利用規約への同意をお願いします。", map[string]any{"wrap": true}),
			flexButton(map[string]any{
				"type":  "uri",
				"label": "利用規約を読む",
				"uri":   termsURL,
			}, map[string]any{"style": "link", "height": "sm"}),
		}, map[string]any{"spacing": "md"}),
		"footer": flexBox("vertical", []any{
			flexButton(postbackAction("同意する", "action=agreeToTerms"),
				map[string]any{"style": "primary", "height": "sm"}),
			flexButton(postbackAction("同意しない", "action=disagreeToTerms"),
				map[string]any{"style": "secondary", "height": "sm"}),
		}, map[string]any{"spacing": "sm"}),
	}
	return FlexMessage{
		Type:     "flex",
		AltText:  "利用規約への同意のお願い",
		Contents: bubble,
	}
}

// NewReminderManagementFlexMessage карточки управления двумя слотами
// напоминаний: вечерним (о завтрашнем вывозе) и утренним (о сегодняшнем).
func NewReminderManagementFlexMessage(nightTime, morningTime string) FlexMessage {
	return FlexMessage{
		Type:    "flex",
		AltText: "リマインダー設定",
		Contents: map[string]any{
			"type": "carousel",
			"contents": []any{
				reminderSlotBubble("夜のリマインダー🔔", "明日のごみを前日にお知らせ", "night", nightTime),
				reminderSlotBubble("朝のリマインダー☀️", "今日のごみを当日にお知らせ", "morning", morningTime),
			},
		},
	}
}

func reminderSlotBubble(title, description, slot, current string) map[string]any {
	status := "未設定"
	initial := "21:00"
	if slot == "morning" {
		initial = "07:00"
	}
	if current != "" {
		status = fmt.Sprintf("毎日 %s", current)
		initial = current
	}
	return map[string]any{
		"type": "bubble",
		"header": flexBox("vertical", []any{
			flexText(title, map[string]any{"weight": "bold", "size": "lg", "color": "#176FB8"}),
		}, nil),
		"body": flexBox("vertical", []any{
			flexText(description, map[string]any{"size": "sm", "color": "#888888", "wrap": true}),
			flexText(status, map[string]any{"weight": "bold", "size": "md", "margin": "md"}),
		}, nil),
		"footer": flexBox("vertical", []any{
			flexButton(datetimePickerAction("時刻を変更・設定する",
				"action=setReminderTime&type="+slot, initial),
				map[string]any{"style": "primary", "height": "sm"}),
			flexButton(postbackAction("リマインダーを停止する", "action=stopReminder&type="+slot),
				map[string]any{"style": "secondary", "height": "sm"}),
		}, map[string]any{"spacing": "sm"}),
	}
}
