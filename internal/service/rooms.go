package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/models"
	"hotelier/internal/repository"
)

type RoomService struct {
	rooms     RoomStore
	index     RoomIndex
	publisher Publisher
}

func NewRoomService(rooms RoomStore, index RoomIndex, publisher Publisher) *RoomService {
	return &RoomService{rooms: rooms, index: index, publisher: publisher}
}

func (s *RoomService) Create(ctx context.Context, req *models.CreateRoomRequest) (*models.Room, error) {
	if strings.TrimSpace(req.Number) == "" {
		return nil, apperrors.Validation("room number is required")
	}
	if req.Price <= 0 || req.Capacity <= 0 {
		return nil, apperrors.Validation("price and capacity must be positive")
	}

	room := &models.Room{
		Number:      strings.TrimSpace(req.Number),
		Type:        req.Type,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Status:      models.RoomAvailable,
		Description: req.Description,
		Amenities:   req.Amenities,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("room %s already exists", room.Number)
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.roomChanged(ctx, room)
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, apperrors.NotFound("room", id)
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	rooms, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// SetMaintenance takes a room out of service or returns it.
func (s *RoomService) SetMaintenance(ctx context.Context, id int64, on bool) (*models.Room, error) {
	room, err := s.rooms.SetMaintenance(ctx, id, on)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("room", id)
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	logger.WithContext(ctx).Info("Room maintenance updated", "room_id", id, "status", room.Status)
	s.roomChanged(ctx, room)
	return room, nil
}

// Search queries the search index and falls back to the database listing when
// the index is disabled or failing.
func (s *RoomService) Search(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	if s.index == nil {
		return s.List(ctx, filter)
	}

	ids, err := s.index.SearchRooms(ctx, filter)
	if err != nil {
		logger.WithContext(ctx).Warn("Room search failed, falling back to database", "error", err)
		return s.List(ctx, filter)
	}

	rooms := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.rooms.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get room: %w", err)
		}
		if room != nil {
			rooms = append(rooms, *room)
		}
	}
	return rooms, nil
}

// roomChanged refreshes the search index and announces the change.
func (s *RoomService) roomChanged(ctx context.Context, room *models.Room) {
	if s.index != nil {
		if err := s.index.IndexRoom(ctx, room); err != nil {
			logger.WithContext(ctx).Warn("Failed to index room", "error", err, "room_id", room.ID)
		}
	}
	publish(ctx, s.publisher, models.EventRoomUpdated, models.RoomUpdatedEvent{
		RoomID:    room.ID,
		Status:    room.Status,
		Timestamp: time.Now(),
	}, "room_id", room.ID)
}
