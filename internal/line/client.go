// Package line реализует минимальный клиент LINE Messaging API:
// отправку ответов и push-сообщений, проверку подписи вебхука
// и сборку текстовых и Flex-сообщений.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message любой отправляемый объект сообщения (текст или flex).
type Message any

// Client клиент LINE Messaging API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient создаёт новый клиент с каналом доступа.
func NewClient(endpoint, accessToken string) *Client {
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Reply отвечает на входящее событие. Токен ответа одноразовый,
// поэтому на одно событие выполняется не больше одного вызова.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	const op = "line.Reply"
	if err := c.post(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Push отправляет сообщение пользователю вне контекста события,
// например из диспетчера напоминаний.
func (c *Client) Push(ctx context.Context, to string, messages []Message) error {
	const op = "line.Push"
	if err := c.post(ctx, "/v2/bot/message/push", pushRequest{
		To:       to,
		Messages: messages,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, detail)
	}
	return nil
}
