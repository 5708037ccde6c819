package repository

import (
	"context"
	"database/sql"
	"errors"

	"hotelier/internal/database"
	"hotelier/internal/models"
)

type ServiceRepository struct {
	db *database.DB
}

func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (name, description, price, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		service.Name,
		service.Description,
		service.Price,
		service.IsActive,
	).Scan(&service.ID, &service.CreatedAt)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	service := &models.Service{}
	query := `SELECT id, name, description, price, is_active, created_at FROM services WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.IsActive,
		&service.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return service, err
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	query := `SELECT id, name, description, price, is_active, created_at FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
