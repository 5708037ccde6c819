package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelier/internal/logger"
	"hotelier/internal/models"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 10 * time.Second

type RatingInvalidator interface {
	InvalidateRating(ctx context.Context, roomID int64) error
}

type RoomSource interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
}

type RoomIndexer interface {
	IndexRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id int64) error
}

// Handlers keep the derived read models (rating cache, room index) in step
// with the events the API publishes.
type Handlers struct {
	ratings RatingInvalidator
	rooms   RoomSource
	index   RoomIndexer
}

func NewHandlers(ratings RatingInvalidator, rooms RoomSource, index RoomIndexer) *Handlers {
	return &Handlers{ratings: ratings, rooms: rooms, index: index}
}

// HandleReviewSubmitted drops the cached rating of the reviewed room.
func (h *Handlers) HandleReviewSubmitted(m *stan.Msg) {
	ackIfDone(m, models.EventReviewSubmitted, h.reviewSubmitted)
}

// HandleRoomUpdated re-indexes the room from the database.
func (h *Handlers) HandleRoomUpdated(m *stan.Msg) {
	ackIfDone(m, models.EventRoomUpdated, h.roomUpdated)
}

// ackIfDone acks only processed messages; failures are redelivered after AckWait.
func ackIfDone(m *stan.Msg, subject string, handle func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	log := logger.WithFields("event_type", subject, "sequence", m.Sequence)
	if err := handle(ctx, m.Data); err != nil {
		log.Error("Failed to process event", "error", err, "redelivered", m.Redelivered)
		return
	}
	if err := m.Ack(); err != nil {
		log.Error("Failed to ack event", "error", err)
	}
}

func (h *Handlers) reviewSubmitted(ctx context.Context, data []byte) error {
	var event models.ReviewSubmittedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// a malformed payload never becomes valid, so it is consumed
		logger.Get().Error("Failed to unmarshal review submitted event", "error", err)
		return nil
	}

	if err := h.ratings.InvalidateRating(ctx, event.RoomID); err != nil {
		return fmt.Errorf("failed to invalidate rating of room %d: %w", event.RoomID, err)
	}
	logger.Get().Debug("Rating cache invalidated", "room_id", event.RoomID, "review_id", event.ReviewID)
	return nil
}

func (h *Handlers) roomUpdated(ctx context.Context, data []byte) error {
	var event models.RoomUpdatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal room updated event", "error", err)
		return nil
	}

	room, err := h.rooms.GetByID(ctx, event.RoomID)
	if err != nil {
		return fmt.Errorf("failed to load room %d: %w", event.RoomID, err)
	}
	if room == nil {
		if err := h.index.DeleteRoom(ctx, event.RoomID); err != nil {
			return fmt.Errorf("failed to remove room %d from index: %w", event.RoomID, err)
		}
		return nil
	}

	if err := h.index.IndexRoom(ctx, room); err != nil {
		return fmt.Errorf("failed to index room %d: %w", room.ID, err)
	}
	logger.Get().Debug("Room re-indexed", "room_id", room.ID, "status", room.Status)
	return nil
}
