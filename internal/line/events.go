package line

import "net/url"

// Типы входящих событий вебхука.
const (
	EventTypeMessage  = "message"
	EventTypeFollow   = "follow"
	EventTypePostback = "postback"
)

// WebhookRequest тело запроса вебхука LINE.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events" validate:"required"`
}

// Event одно событие вебхука.
type Event struct {
	Type       string        `json:"type" validate:"required"`
	ReplyToken string        `json:"replyToken"`
	Source     EventSource   `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
	Postback   *Postback     `json:"postback,omitempty"`
}

// EventSource отправитель события.
type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// EventMessage содержимое события message.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// Postback данные события postback. Params заполняется, когда действие
// исходит от datetime picker.
type Postback struct {
	Data   string         `json:"data"`
	Params PostbackParams `json:"params"`
}

// PostbackParams параметры datetime picker.
type PostbackParams struct {
	Time string `json:"time"`
}

// ParsePostbackData разбирает строку данных postback формата
// "action=startChange&day=月曜日" в map.
func ParsePostbackData(data string) map[string]string {
	out := make(map[string]string)
	values, err := url.ParseQuery(data)
	if err != nil {
		return out
	}
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}
