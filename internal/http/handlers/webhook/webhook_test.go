package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shizu-na/gomidashi-bot/internal/line"
)

const channelSecret = "test-channel-secret"

type handlerSpy struct {
	events []line.Event
}

func (h *handlerSpy) HandleEvent(_ context.Context, event line.Event) {
	h.events = append(h.events, event)
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	return req
}

func TestServeHTTP(t *testing.T) {
	validBody := `{"destination":"xxx","events":[` +
		`{"type":"message","replyToken":"rt","source":{"type":"user","userId":"U1"},` +
		`"message":{"id":"1","type":"text","text":"今日"}}]}`

	tests := []struct {
		name       string
		body       string
		signature  string
		wantStatus int
		wantEvents int
	}{
		{
			name:       "валидный запрос передается сервису",
			body:       validBody,
			signature:  sign(validBody),
			wantStatus: http.StatusOK,
			wantEvents: 1,
		},
		{
			name:       "неверная подпись отклоняется",
			body:       validBody,
			signature:  "bogus",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "запрос без подписи отклоняется",
			body:       validBody,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "битый JSON с верной подписью",
			body:       `{"events":`,
			signature:  sign(`{"events":`),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "тело без events не проходит валидацию",
			body:       `{"destination":"xxx"}`,
			signature:  sign(`{"destination":"xxx"}`),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &handlerSpy{}
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), spy, channelSecret)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, newRequest(tt.body, tt.signature))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Len(t, spy.events, tt.wantEvents)
		})
	}
}

func TestServeHTTP_EventFields(t *testing.T) {
	body := `{"destination":"xxx","events":[` +
		`{"type":"postback","replyToken":"rt","source":{"type":"user","userId":"U1"},` +
		`"postback":{"data":"action=startChange&day=月曜日","params":{}}}]}`

	spy := &handlerSpy{}
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), spy, channelSecret)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(body, sign(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, spy.events, 1)

	event := spy.events[0]
	assert.Equal(t, line.EventTypePostback, event.Type)
	assert.Equal(t, "U1", event.Source.UserID)
	require.NotNil(t, event.Postback)
	assert.Equal(t, "action=startChange&day=月曜日", event.Postback.Data)
}
