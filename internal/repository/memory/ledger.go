package memory

import (
	"context"
	"fmt"
	"strings"

	"hotelier/internal/models"
	"hotelier/internal/repository"
)

// Loyalty

type Loyalty struct{ s *Store }

func (r *Loyalty) Earn(_ context.Context, pt *models.PointTransaction) (models.LoyaltyAccount, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc := r.s.account(pt.UserID)
	if pt.BookingID != nil {
		for _, existing := range r.s.pointTxs {
			if existing.Type == models.PointsEarned && existing.BookingID != nil && *existing.BookingID == *pt.BookingID {
				return acc, false, nil
			}
		}
	}

	pt.Type = models.PointsEarned
	r.s.appendTx(pt)
	acc.CurrentPoints += pt.Points
	acc.TotalEarned += pt.Points
	acc.UpdatedAt = pt.CreatedAt
	r.s.accounts[pt.UserID] = acc
	return acc, true, nil
}

func (r *Loyalty) Redeem(_ context.Context, pt *models.PointTransaction) (models.LoyaltyAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc := r.s.account(pt.UserID)
	if pt.Points > acc.CurrentPoints {
		return acc, repository.ErrInsufficientPoints
	}

	pt.Type = models.PointsRedeemed
	r.s.appendTx(pt)
	acc.CurrentPoints -= pt.Points
	acc.UpdatedAt = pt.CreatedAt
	r.s.accounts[pt.UserID] = acc
	return acc, nil
}

func (r *Loyalty) GetAccount(_ context.Context, userID int64) (models.LoyaltyAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.account(userID), nil
}

func (r *Loyalty) Transactions(_ context.Context, userID int64) ([]models.PointTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PointTransaction{}
	for _, pt := range r.s.pointTxs {
		if pt.UserID == userID {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (s *Store) account(userID int64) models.LoyaltyAccount {
	if acc, ok := s.accounts[userID]; ok {
		return acc
	}
	return models.LoyaltyAccount{UserID: userID}
}

func (s *Store) appendTx(pt *models.PointTransaction) {
	pt.ID = s.nextID()
	pt.CreatedAt = s.now()
	s.pointTxs = append(s.pointTxs, *pt)
}

// Promotions

type Promotions struct{ s *Store }

func (r *Promotions) Create(_ context.Context, promo *models.PromoCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.promos {
		if strings.EqualFold(existing.Code, promo.Code) {
			return fmt.Errorf("%w: code %s", repository.ErrDuplicate, promo.Code)
		}
	}
	promo.ID = r.s.nextID()
	promo.CreatedAt = r.s.now()
	r.s.promos[promo.ID] = *promo
	return nil
}

func (r *Promotions) GetByCode(_ context.Context, code string) (*models.PromoCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.promos {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *Promotions) Redeem(_ context.Context, usage *models.PromoCodeUsage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	promo, ok := r.s.promos[usage.PromoCodeID]
	if !ok || promo.Depleted() {
		return repository.ErrUsageLimit
	}

	perUser := 0
	for _, u := range r.s.usages {
		if u.PromoCodeID != usage.PromoCodeID {
			continue
		}
		if u.BookingID == usage.BookingID {
			return fmt.Errorf("%w: booking %d already used code", repository.ErrDuplicate, usage.BookingID)
		}
		if u.UserID == usage.UserID {
			perUser++
		}
	}
	if promo.PerUserLimit > 0 && perUser >= promo.PerUserLimit {
		return repository.ErrPerUserLimit
	}

	b, ok := r.s.bookings[usage.BookingID]
	if !ok {
		return repository.ErrNotFound
	}
	if b.DiscountAmount > 0 {
		return repository.ErrAlreadyDiscounted
	}

	promo.UsedCount++
	r.s.promos[promo.ID] = promo

	usage.ID = r.s.nextID()
	usage.UsedAt = r.s.now()
	r.s.usages = append(r.s.usages, *usage)

	b.DiscountAmount = usage.DiscountAmount
	b.UpdatedAt = usage.UsedAt
	r.s.bookings[b.ID] = b
	return nil
}

// UsageCount returns the recorded redemptions of a code.
func (r *Promotions) UsageCount(promoID int64) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, u := range r.s.usages {
		if u.PromoCodeID == promoID {
			n++
		}
	}
	return n
}
