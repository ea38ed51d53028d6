package line

import "fmt"

// TextMessage простое текстовое сообщение, опционально с quick reply.
type TextMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

// FlexMessage сообщение с Flex-контейнером (bubble или carousel).
type FlexMessage struct {
	Type       string         `json:"type"`
	AltText    string         `json:"altText"`
	Contents   map[string]any `json:"contents"`
	QuickReply *QuickReply    `json:"quickReply,omitempty"`
}

// QuickReply панель быстрых ответов под сообщением.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem одна кнопка быстрого ответа.
type QuickReplyItem struct {
	Type   string         `json:"type"`
	Action map[string]any `json:"action"`
}

func messageAction(label, text string) map[string]any {
	return map[string]any{"type": "message", "label": label, "text": text}
}

func postbackAction(label, data string) map[string]any {
	return map[string]any{"type": "postback", "label": label, "data": data}
}

func datetimePickerAction(label, data, initial string) map[string]any {
	action := map[string]any{
		"type":  "datetimepicker",
		"label": label,
		"data":  data,
		"mode":  "time",
	}
	if initial != "" {
		action["initial"] = initial
	}
	return action
}

// Тексты всех пользовательских сообщений бота.
const (
	TextCancelled       = "操作をキャンセルしました。"
	TextGenericError    = "エラーが発生しました。時間をおいて再度お試しください。"
	TextUnexpectedError = "申し訳ありません、予期せぬエラーが発生しました。"

	TextFollowNew         = "友だち追加ありがとうございます！🙌"
	TextBotDescription    = "「あれ、今日のゴミなんだっけ？」を解決する、あなた専用のゴミ出し日管理Botです。"
	TextFollowWelcomeBack = "おかえりなさい！\n引き続き、ごみ出し予報をご利用いただけます。"
	TextFollowRejoin      = "おかえりなさい！\n以前のスケジュールが保存されています。ご利用を再開しますか？"

	TextTermsAgreed    = "✅ 同意ありがとうございます！\n早速、「一覧」を押して、ごみ出しの予定を確認・編集してみましょう。"
	TextTermsDisagreed = "ご利用いただくには、利用規約への同意が必要です。\n\n同意いただける場合は、もう一度何かメッセージを送ってください。"
	TextAlreadyActive  = "すでにご利用登録が完了しています。"

	TextUnsubscribed = "ご利用ありがとうございました。\nまた使いたくなったら、いつでも話しかけてください！"
	TextSuspended    = "現在、機能が停止されています。利用を再開しますか？"
	TextReactivated  = "✅ 利用を再開しました！"

	TextAskItemFormat  = "【%s】の品目を何と変更しますか？入力してください。\n\nそのままにするなら「スキップ」、変更をやめるなら「キャンセル」を押してください。"
	TextAskNote        = "メモを何と変更しますか？入力してください。\n\nそのままにするなら「スキップ」、これまでの変更を取り消すなら「キャンセル」を押してください。"
	TextItemTooLong    = "⚠️ 品目は%d文字以内で入力してください。"
	TextNoteTooLong    = "⚠️ メモは%d文字以内で入力してください。"
	TextFlowTimeout    = "操作が中断されたか、時間切れになりました。\nもう一度やり直してください。"
	TextUpdateFailed   = "エラーにより予定の更新に失敗しました。"
	TextScheduleEmpty  = "ごみ出し情報が登録されていません。「一覧」と送信してスケジュールを登録してください。"
	TextDayNotFound    = "%sのごみ出し情報は見つかりませんでした。"
	TextSchedulePrompt = "変更したい曜日があれば、カードをタップして編集できます。"

	TextReminderNotAllowed = "申し訳ありません。この機能は許可されたユーザーのみご利用いただけます。"
	TextReminderSetFormat  = "✅ 承知いたしました。【%sのリマインダー】を毎日 %s に送信します。"
	TextReminderStopFormat = "✅【%sのリマインダー】を停止しました。"

	TextFallback = "ご用件が分かりませんでした。下のボタンから操作を選んでください。"
)

// Токены диалога редактирования.
const (
	TokenCancel = "キャンセル"
	TokenSkip   = "スキップ"
	TokenNoNote = "なし"
)

func menuQuickReply() *QuickReply {
	return &QuickReply{Items: []QuickReplyItem{
		{Type: "action", Action: messageAction("一覧", "一覧")},
		{Type: "action", Action: messageAction("今日", "今日")},
		{Type: "action", Action: messageAction("明日", "明日")},
		{Type: "action", Action: messageAction("リマインダー", "リマインダー")},
		{Type: "action", Action: messageAction("ヘルプ", "ヘルプ")},
	}}
}

// NewTextMessage собирает простое текстовое сообщение.
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// NewMenuMessage собирает текстовое сообщение с меню быстрых ответов.
func NewMenuMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text, QuickReply: menuQuickReply()}
}

// NewFallbackMessage ответ на нераспознанную команду. Всегда показывает
// меню, молчание недопустимо.
func NewFallbackMessage() TextMessage {
	return NewMenuMessage(TextFallback)
}

// NewReactivationPrompt предлагает отписавшемуся пользователю вернуться.
func NewReactivationPrompt(text string) TextMessage {
	return TextMessage{
		Type: "text",
		Text: text,
		QuickReply: &QuickReply{Items: []QuickReplyItem{
			{Type: "action", Action: messageAction("利用を再開する", "利用を再開する")},
		}},
	}
}

// NewItemPrompt запрашивает новую позицию для дня day.
func NewItemPrompt(day string) TextMessage {
	return TextMessage{
		Type:       "text",
		Text:       fmt.Sprintf(TextAskItemFormat, day),
		QuickReply: flowQuickReply(),
	}
}

// NewNotePrompt запрашивает новую заметку.
func NewNotePrompt() TextMessage {
	return TextMessage{
		Type: "text",
		Text: TextAskNote,
		QuickReply: &QuickReply{Items: []QuickReplyItem{
			{Type: "action", Action: messageAction(TokenSkip, TokenSkip)},
			{Type: "action", Action: messageAction(TokenNoNote, TokenNoNote)},
			{Type: "action", Action: messageAction(TokenCancel, TokenCancel)},
		}},
	}
}

// NewValidationError повторяет запрос того же шага с пояснением.
func NewValidationError(text string) TextMessage {
	return TextMessage{
		Type:       "text",
		Text:       text,
		QuickReply: flowQuickReply(),
	}
}

func flowQuickReply() *QuickReply {
	return &QuickReply{Items: []QuickReplyItem{
		{Type: "action", Action: messageAction(TokenSkip, TokenSkip)},
		{Type: "action", Action: messageAction(TokenCancel, TokenCancel)},
	}}
}
