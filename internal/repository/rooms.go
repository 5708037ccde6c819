package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelier/internal/database"
	"hotelier/internal/models"

	"github.com/lib/pq"
)

type RoomRepository struct {
	db *database.DB
}

func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, number, type, price, capacity, status, description, amenities, created_at, updated_at`

func scanRoom(row scanner) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Price,
		&room.Capacity,
		&room.Status,
		&room.Description,
		pq.Array(&room.Amenities),
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	return room, err
}

// Create inserts the room. A taken room number yields ErrDuplicate.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	query := `
		INSERT INTO rooms (number, type, price, capacity, status, description, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		room.Number,
		room.Type,
		room.Price,
		room.Capacity,
		room.Status,
		room.Description,
		pq.Array(room.Amenities),
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	return mapPQError(err)
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return room, err
}

func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	var args []interface{}
	argIndex := 1

	query := `SELECT ` + roomColumns + ` FROM rooms WHERE 1=1`

	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}

	if filter.MinCapacity > 0 {
		query += fmt.Sprintf(" AND capacity >= $%d", argIndex)
		args = append(args, filter.MinCapacity)
		argIndex++
	}

	if filter.MaxPrice > 0 {
		query += fmt.Sprintf(" AND price <= $%d", argIndex)
		args = append(args, filter.MaxPrice)
		argIndex++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	query += " ORDER BY number"

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.PageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}

	return rooms, rows.Err()
}

// SetMaintenance toggles maintenance. Leaving maintenance restores booked when a
// booking still holds the room for a current or future window.
func (r *RoomRepository) SetMaintenance(ctx context.Context, id int64, on bool) (*models.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current models.RoomStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	next := models.RoomMaintenance
	if !on {
		var held bool
		if err := tx.QueryRowContext(ctx, roomReservedQuery, id).Scan(&held); err != nil {
			return nil, err
		}
		next = models.RoomAvailable
		if held {
			next = models.RoomBooked
		}
	}

	query := `UPDATE rooms SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + roomColumns
	room, err := scanRoom(tx.QueryRowContext(ctx, query, next, id))
	if err != nil {
		return nil, err
	}

	return room, tx.Commit()
}

func (r *RoomRepository) CountByStatus(ctx context.Context) (map[models.RoomStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM rooms GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.RoomStatus]int{
		models.RoomAvailable:   0,
		models.RoomBooked:      0,
		models.RoomMaintenance: 0,
	}
	for rows.Next() {
		var status models.RoomStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
