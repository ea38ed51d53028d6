package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shizu-na/gomidashi-bot/internal/line"
	"github.com/shizu-na/gomidashi-bot/internal/models"
	"github.com/shizu-na/gomidashi-bot/internal/storage/repository"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) GetUser(ctx context.Context, lineUserID string) (*models.User, error) {
	args := m.Called(ctx, lineUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *repoMock) CreateUser(ctx context.Context, lineUserID string) error {
	return m.Called(ctx, lineUserID).Error(0)
}

func (m *repoMock) UpdateUserStatus(ctx context.Context, lineUserID, status string) error {
	return m.Called(ctx, lineUserID, status).Error(0)
}

func (m *repoMock) UpdateReminderTime(ctx context.Context, lineUserID, slot string, timeStr *string) error {
	return m.Called(ctx, lineUserID, slot, timeStr).Error(0)
}

func (m *repoMock) ListSchedules(ctx context.Context, lineUserID string) ([]*models.ScheduleEntry, error) {
	args := m.Called(ctx, lineUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduleEntry), args.Error(1)
}

func (m *repoMock) GetScheduleEntry(ctx context.Context, lineUserID, day string) (*models.ScheduleEntry, error) {
	args := m.Called(ctx, lineUserID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleEntry), args.Error(1)
}

func (m *repoMock) UpsertScheduleEntry(ctx context.Context, lineUserID, day, item, note string) error {
	return m.Called(ctx, lineUserID, day, item, note).Error(0)
}

func (m *repoMock) IsOnReminderAllowlist(ctx context.Context, lineUserID string) (bool, error) {
	args := m.Called(ctx, lineUserID)
	return args.Bool(0), args.Error(1)
}

// fakeSessions хранит сессии в памяти через JSON, как это делает
// обертка над Redis, чтобы сквозные тесты диалога прошли полный
// цикл сериализации.
type fakeSessions struct {
	data map[string][]byte
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[string][]byte)}
}

func (f *fakeSessions) Get(_ context.Context, key string, result any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeSessions) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeSessions) Invalidate(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeSessions) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = []byte("1")
	return true, nil
}

// senderSpy записывает все ответы, чтобы тесты проверяли, что и
// сколько раз было отправлено.
type senderSpy struct {
	replies [][]line.Message
	pushes  [][]line.Message
}

func (s *senderSpy) Reply(_ context.Context, _ string, messages []line.Message) error {
	s.replies = append(s.replies, messages)
	return nil
}

func (s *senderSpy) Push(_ context.Context, _ string, messages []line.Message) error {
	s.pushes = append(s.pushes, messages)
	return nil
}

const testUserID = "U1234567890abcdef"

func newTestService(repo *repoMock, sessions SessionStore, sender *senderSpy) *Service {
	loc, _ := time.LoadLocation("Asia/Tokyo")
	svc := New(repo, sessions, sender, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		TermsURL:   "https://example.com/terms",
		SessionTTL: 5 * time.Minute,
		Limits:     Limits{ItemMaxLength: 20, NoteMaxLength: 50},
		Location:   loc,
	})
	// 2025-09-01 — понедельник в Токио.
	svc.now = func() time.Time {
		return time.Date(2025, 9, 1, 10, 0, 0, 0, loc)
	}
	return svc
}

func textEvent(text string) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "reply-token",
		Source:     line.EventSource{Type: "user", UserID: testUserID},
		Message:    &line.EventMessage{Type: "text", Text: text},
	}
}

func postbackEvent(data, pickedTime string) line.Event {
	return line.Event{
		Type:       line.EventTypePostback,
		ReplyToken: "reply-token",
		Source:     line.EventSource{Type: "user", UserID: testUserID},
		Postback:   &line.Postback{Data: data, Params: line.PostbackParams{Time: pickedTime}},
	}
}

func activeUser() *models.User {
	return &models.User{LineUserID: testUserID, Status: models.UserStatusActive}
}

func TestHandleMessage_UnregisteredUserGetsTerms(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(nil, repository.ErrNotFound)

	svc.HandleEvent(context.Background(), textEvent("今日"))

	require.Len(t, sender.replies, 1)
	require.Len(t, sender.replies[0], 1)
	repo.AssertNotCalled(t, "GetScheduleEntry", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_TermsAgreementByText(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(nil, repository.ErrNotFound)
	repo.On("CreateUser", mock.Anything, testUserID).Return(nil)

	svc.HandleEvent(context.Background(), textEvent("利用規約に同意する"))

	require.Len(t, sender.replies, 1)
	repo.AssertExpectations(t)
}

func TestHandleMessage_TodayQuery(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(activeUser(), nil)
	repo.On("GetScheduleEntry", mock.Anything, testUserID, "月曜日").
		Return(&models.ScheduleEntry{LineUserID: testUserID, Day: "月曜日", Item: "燃えるごみ", Note: models.NoteNone}, nil)

	svc.HandleEvent(context.Background(), textEvent("今日"))

	require.Len(t, sender.replies, 1)
	require.Len(t, sender.replies[0], 1)
	repo.AssertExpectations(t)
}

func TestHandleMessage_UnknownCommandFallsBack(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(activeUser(), nil)

	svc.HandleEvent(context.Background(), textEvent("こんにちは"))

	require.Len(t, sender.replies, 1)
}

func TestHandleMessage_Reactivation(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		expectUpdate bool
	}{
		{"точная фраза возобновляет доступ", "利用を再開する", true},
		{"любой другой текст только напоминает о приостановке", "今日", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMock)
			sender := &senderSpy{}
			svc := newTestService(repo, newFakeSessions(), sender)

			repo.On("GetUser", mock.Anything, testUserID).
				Return(&models.User{LineUserID: testUserID, Status: models.UserStatusUnsubscribed}, nil)
			if tt.expectUpdate {
				repo.On("UpdateUserStatus", mock.Anything, testUserID, models.UserStatusActive).Return(nil)
			}

			svc.HandleEvent(context.Background(), textEvent(tt.text))

			require.Len(t, sender.replies, 1)
			if tt.expectUpdate {
				repo.AssertExpectations(t)
			} else {
				repo.AssertNotCalled(t, "UpdateUserStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandleMessage_Unregister(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(activeUser(), nil)
	repo.On("UpdateUserStatus", mock.Anything, testUserID, models.UserStatusUnsubscribed).Return(nil)

	svc.HandleEvent(context.Background(), textEvent("退会"))

	require.Len(t, sender.replies, 1)
	repo.AssertExpectations(t)
}

func TestHandleMessage_ReminderNotAllowed(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(activeUser(), nil)
	repo.On("IsOnReminderAllowlist", mock.Anything, testUserID).Return(false, nil)

	svc.HandleEvent(context.Background(), textEvent("リマインダー"))

	require.Len(t, sender.replies, 1)
	repo.AssertExpectations(t)
}

func TestHandleFollow_NewUser(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(nil, repository.ErrNotFound)

	svc.HandleEvent(context.Background(), line.Event{
		Type:       line.EventTypeFollow,
		ReplyToken: "reply-token",
		Source:     line.EventSource{Type: "user", UserID: testUserID},
	})

	require.Len(t, sender.replies, 1)
	assert.Len(t, sender.replies[0], 3, "приветствие, описание и карточка условий")
}

func TestPostback_AgreeToTermsRegisters(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(nil, repository.ErrNotFound)
	repo.On("CreateUser", mock.Anything, testUserID).Return(nil)

	svc.HandleEvent(context.Background(), postbackEvent("action=agreeToTerms", ""))

	require.Len(t, sender.replies, 1)
	repo.AssertExpectations(t)
}

func TestPostback_SetReminderTime(t *testing.T) {
	t.Run("корректное время сохраняется", func(t *testing.T) {
		repo := new(repoMock)
		sender := &senderSpy{}
		svc := newTestService(repo, newFakeSessions(), sender)

		repo.On("UpdateReminderTime", mock.Anything, testUserID, "night",
			mock.MatchedBy(func(ts *string) bool { return ts != nil && *ts == "21:00" })).Return(nil)

		svc.HandleEvent(context.Background(), postbackEvent("action=setReminderTime&type=night", "21:00"))

		require.Len(t, sender.replies, 1)
		repo.AssertExpectations(t)
	})

	t.Run("мусор из пикера не доходит до хранилища", func(t *testing.T) {
		repo := new(repoMock)
		sender := &senderSpy{}
		svc := newTestService(repo, newFakeSessions(), sender)

		svc.HandleEvent(context.Background(), postbackEvent("action=setReminderTime&type=night", "25:99"))

		require.Len(t, sender.replies, 1)
		repo.AssertNotCalled(t, "UpdateReminderTime",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostback_StartChangeDebounce(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	svc := newTestService(repo, newFakeSessions(), sender)

	repo.On("GetScheduleEntry", mock.Anything, testUserID, "火曜日").
		Return(&models.ScheduleEntry{LineUserID: testUserID, Day: "火曜日", Item: "資源ごみ", Note: models.NoteNone}, nil)

	event := postbackEvent("action=startChange&day=火曜日", "")
	svc.HandleEvent(context.Background(), event)
	svc.HandleEvent(context.Background(), event)

	assert.Len(t, sender.replies, 1, "повторное нажатие гасится замком")
}

// Сквозной сценарий: кнопка "変更" по вторнику, новый вид мусора,
// затем скип заметки. Итог фиксируется одной записью, сессия исчезает.
func TestEditFlow_EndToEnd(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	sessions := newFakeSessions()
	svc := newTestService(repo, sessions, sender)

	repo.On("GetUser", mock.Anything, testUserID).Return(activeUser(), nil)
	repo.On("GetScheduleEntry", mock.Anything, testUserID, "火曜日").
		Return(&models.ScheduleEntry{LineUserID: testUserID, Day: "火曜日", Item: "燃えないごみ", Note: "第2のみ"}, nil)
	repo.On("UpsertScheduleEntry", mock.Anything, testUserID, "火曜日", "資源ごみ", "第2のみ").Return(nil)

	svc.HandleEvent(context.Background(), postbackEvent("action=startChange&day=火曜日", ""))
	svc.HandleEvent(context.Background(), textEvent("資源ごみ"))
	svc.HandleEvent(context.Background(), textEvent("スキップ"))

	require.Len(t, sender.replies, 3)
	repo.AssertExpectations(t)

	_, stillThere := sessions.data[sessionKey(testUserID)]
	assert.False(t, stillThere, "после фиксации сессия уничтожена")
}

// Отмена на любом шаге ничего не пишет в хранилище.
func TestEditFlow_Cancel(t *testing.T) {
	repo := new(repoMock)
	sender := &senderSpy{}
	sessions := newFakeSessions()
	svc := newTestService(repo, sessions, sender)

	repo.On("GetScheduleEntry", mock.Anything, testUserID, "月曜日").
		Return(&models.ScheduleEntry{LineUserID: testUserID, Day: "月曜日", Item: "燃えるごみ", Note: models.NoteNone}, nil)

	svc.HandleEvent(context.Background(), postbackEvent("action=startChange&day=月曜日", ""))
	svc.HandleEvent(context.Background(), textEvent("キャンセル"))

	require.Len(t, sender.replies, 2)
	repo.AssertNotCalled(t, "UpsertScheduleEntry",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, stillThere := sessions.data[sessionKey(testUserID)]
	assert.False(t, stillThere)
}
