// Package webhook реализует единственную точку входа LINE Messaging API.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/shizu-na/gomidashi-bot/internal/http/response"
	"github.com/shizu-na/gomidashi-bot/internal/lib/sl"
	"github.com/shizu-na/gomidashi-bot/internal/line"
)

// EventHandler обрабатывает одно событие вебхука.
type EventHandler interface {
	HandleEvent(ctx context.Context, event line.Event)
}

// Handler принимает запросы вебхука, проверяет подпись и передает
// события в сервис.
type Handler struct {
	log           *slog.Logger
	service       EventHandler
	validate      *validator.Validate
	channelSecret string
}

// New создает новый обработчик вебхука.
func New(log *slog.Logger, service EventHandler, channelSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		channelSecret: channelSecret,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request"))
		return
	}

	// Подпись проверяется по сырому телу до разбора JSON. Детали
	// несовпадения наружу не отдаются.
	signature := r.Header.Get("X-Line-Signature")
	if !line.ValidateSignature(h.channelSecret, body, signature) {
		log.Error("signature validation failed")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req line.WebhookRequest
	if err = json.Unmarshal(body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err = h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	for _, event := range req.Events {
		h.service.HandleEvent(r.Context(), event)
	}

	render.JSON(w, r, response.OK())
}
