package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	eventapp "github.com/seidelmaycon/game-api/internal/application"
	"github.com/seidelmaycon/game-api/internal/domain/entity"
	"github.com/seidelmaycon/game-api/internal/interface/middleware"
	"github.com/seidelmaycon/game-api/pkg/response"
)

type GameEventHandler struct {
	Svc    *eventapp.GameEventService
	Logger *logrus.Logger
}

func NewGameEventHandler(svc *eventapp.GameEventService, logger *logrus.Logger) *GameEventHandler {
	return &GameEventHandler{Svc: svc, Logger: logger}
}

type gameEventPayload struct {
	GameName   string  `json:"game_name"`
	Type       string  `json:"type"`
	OccurredAt *string `json:"occurred_at"`
}

type createGameEventRequest struct {
	GameEvent *gameEventPayload `json:"game_event" binding:"required"`
}

type gameEventResponse struct {
	ID         int64     `json:"id"`
	GameName   string    `json:"game_name"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newGameEventResponse(e *entity.GameEvent) gameEventResponse {
	return gameEventResponse{
		ID:         e.ID,
		GameName:   e.GameName,
		Type:       strings.ToUpper(e.EventType.String()),
		OccurredAt: e.OccurredAt.UTC(),
	}
}

// occurredAtLayouts are tried in order; zone-less values are read as UTC.
var occurredAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseOccurredAt returns nil for a missing or blank value and invalid=true
// when a value was given that no layout accepts.
func parseOccurredAt(raw *string) (t *time.Time, invalid bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, false
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range occurredAtLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return &parsed, false
		}
	}
	return nil, true
}

// Create records a game event for the current user. POST /api/user/game_events
// Responds 201 for a new event and 200 when the same event was already recorded.
func (h *GameEventHandler) Create(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "Unauthorized", []string{"Unauthorized"})
		return
	}

	var req createGameEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	occurredAt, invalid := parseOccurredAt(req.GameEvent.OccurredAt)
	res, err := h.Svc.Record(c.Request.Context(), u.ID, eventapp.RecordInput{
		GameName:          req.GameEvent.GameName,
		Type:              req.GameEvent.Type,
		OccurredAt:        occurredAt,
		OccurredAtInvalid: invalid,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	status, msg := http.StatusOK, "game event already recorded"
	if res.Created {
		status, msg = http.StatusCreated, "game event recorded"
	}
	response.Success(c, status, gin.H{"game_event": newGameEventResponse(res.Event)}, msg, nil)
}
