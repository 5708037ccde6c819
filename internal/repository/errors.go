package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrConflict           = errors.New("booking window overlaps an existing booking")
	ErrRoomUnavailable    = errors.New("room is under maintenance")
	ErrStaleStatus        = errors.New("booking status changed concurrently")
	ErrDuplicate          = errors.New("duplicate record")
	ErrUsageLimit         = errors.New("promotional code usage limit reached")
	ErrPerUserLimit       = errors.New("promotional code per-user limit reached")
	ErrAlreadyDiscounted  = errors.New("booking already carries a discount")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)

const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
	pqCheckViolation     = "23514"
)

// mapPQError translates constraint violations into repository sentinels.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqExclusionViolation:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case pqUniqueViolation:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case pqCheckViolation:
		switch pqErr.Constraint {
		case "promotional_codes_usage_cap":
			return fmt.Errorf("%w: %v", ErrUsageLimit, err)
		case "loyalty_points_non_negative":
			return fmt.Errorf("%w: %v", ErrInsufficientPoints, err)
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
