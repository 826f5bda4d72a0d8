package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	repo "github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/pkg/validation"
)

const (
	msgBlank           = "can't be blank"
	msgNotInList       = "is not included in the list"
	msgAlreadyIngested = "event already ingested for this user/game/type/occurred_at"
	msgInvalid         = "is invalid"
)

// publicFieldNames maps internal attribute names to the names clients send.
var publicFieldNames = map[string]string{
	"event_type": "type",
}

// RecordInput is a client-submitted game event. OccurredAt is nil when the
// client omitted it; OccurredAtInvalid is set when it was present but unparsable.
type RecordInput struct {
	GameName          string
	Type              string
	OccurredAt        *time.Time
	OccurredAtInvalid bool
}

// RecordResult reports the stored event and whether this call created it.
type RecordResult struct {
	Event   *entity.GameEvent
	Created bool
}

type GameEventService struct {
	Events        repo.GameEventRepository
	Logger        *logrus.Logger
	ES            *elasticsearch.Client
	ESEventsIndex string

	now func() time.Time
}

func NewGameEventService(events repo.GameEventRepository, logger *logrus.Logger, es *elasticsearch.Client, esEventsIndex string) *GameEventService {
	return &GameEventService{
		Events:        events,
		Logger:        logger,
		ES:            es,
		ESEventsIndex: esEventsIndex,
		now:           time.Now,
	}
}

// WithClock overrides the time source used for the occurred_at check.
func (s *GameEventService) WithClock(now func() time.Time) *GameEventService {
	s.now = now
	return s
}

// Record stores a game event for userID, or returns the existing one when the
// same (game, type, occurred_at) was already recorded. Validation failures
// are returned as *validation.Errors keyed by public field names.
func (s *GameEventService) Record(ctx context.Context, userID int64, in RecordInput) (*RecordResult, error) {
	typeName := entity.NormalizeEventType(in.Type)
	eventType, typeKnown := entity.ParseEventType(typeName)
	gameName := in.GameName

	var occurredAt time.Time
	if in.OccurredAt != nil {
		occurredAt = entity.NormalizeOccurredAt(*in.OccurredAt)
	}

	if strings.TrimSpace(gameName) != "" && in.OccurredAt != nil && typeKnown {
		existing, err := s.Events.FindByKey(ctx, repo.GameEventKey{
			UserID:     userID,
			GameName:   gameName,
			EventType:  eventType,
			OccurredAt: occurredAt,
		})
		if err == nil {
			return &RecordResult{Event: existing, Created: false}, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	verrs := &validation.Errors{}
	if strings.TrimSpace(gameName) == "" {
		verrs.Add("game_name", msgBlank)
	}
	switch {
	case in.OccurredAtInvalid:
		verrs.Add("occurred_at", msgInvalid)
	case in.OccurredAt == nil:
		verrs.Add("occurred_at", msgBlank)
	default:
		now := s.clock()
		if !occurredAt.Before(now) {
			verrs.Add("occurred_at", "must be less than "+now.UTC().Format("2006-01-02 15:04:05 UTC"))
		}
	}
	switch {
	case typeName == "":
		verrs.Add("event_type", msgBlank)
	case !typeKnown:
		verrs.Add("event_type", msgNotInList)
	}
	if !verrs.Empty() {
		return nil, publicErrors(verrs)
	}

	e := &entity.GameEvent{
		UserID:     userID,
		GameName:   gameName,
		EventType:  eventType,
		OccurredAt: occurredAt,
	}
	if err := s.Events.Create(ctx, e); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			verrs.Add("occurred_at", msgAlreadyIngested)
			return nil, publicErrors(verrs)
		}
		return nil, err
	}

	s.indexEvent(ctx, e)
	return &RecordResult{Event: e, Created: true}, nil
}

func (s *GameEventService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func publicErrors(verrs *validation.Errors) *validation.Errors {
	for from, to := range publicFieldNames {
		verrs.Rename(from, to)
	}
	return verrs
}

// indexEvent copies a created event into Elasticsearch. Failures are logged
// and never surface to the caller.
func (s *GameEventService) indexEvent(ctx context.Context, e *entity.GameEvent) {
	if s.ES == nil || s.ESEventsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          e.ID,
		"user_id":     e.UserID,
		"game_name":   e.GameName,
		"type":        e.EventType.String(),
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
		"created_at":  e.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESEventsIndex,
		DocumentID: strconv.FormatInt(e.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("event_id", e.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("event_id", e.ID).Warn("es index response error")
	}
}
