package models

import "math"

type PointTransactionType string

const (
	PointsEarned   PointTransactionType = "earned"
	PointsRedeemed PointTransactionType = "redeemed"
)

// Signed returns the contribution of the transaction to the balance
func (t PointTransaction) Signed() int64 {
	if t.Type == PointsRedeemed {
		return -t.Points
	}
	return t.Points
}

type Level string

const (
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
)

// LevelBand is the half-open point range [Min, Max) mapped to a level.
// The last band has Max == math.MaxInt64.
type LevelBand struct {
	Level Level `json:"level"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
}

// LevelBands are ascending and contiguous: each band starts where the previous ends.
var LevelBands = []LevelBand{
	{Level: LevelBronze, Min: 0, Max: 1000},
	{Level: LevelSilver, Min: 1000, Max: 3000},
	{Level: LevelGold, Min: 3000, Max: 5000},
	{Level: LevelPlatinum, Min: 5000, Max: math.MaxInt64},
}

// LevelFor returns the level of a point balance. Negative balances are Bronze.
func LevelFor(points int64) Level {
	for i := len(LevelBands) - 1; i >= 0; i-- {
		if points >= LevelBands[i].Min {
			return LevelBands[i].Level
		}
	}
	return LevelBands[0].Level
}

// NextLevel returns the level above the balance and the points still needed.
// ok is false at the top band.
func NextLevel(points int64) (next Level, pointsNeeded int64, ok bool) {
	for _, band := range LevelBands {
		if points < band.Min {
			return band.Level, band.Min - points, true
		}
	}
	return "", 0, false
}

// PointsForAmount converts a booking total into earned points at a fixed rate
func PointsForAmount(amount, perCurrencyUnit int64) int64 {
	if amount <= 0 || perCurrencyUnit <= 0 {
		return 0
	}
	return amount / perCurrencyUnit
}

// Balance is the projection returned by the loyalty ledger
type Balance struct {
	UserID            int64  `json:"user_id"`
	CurrentPoints     int64  `json:"current_points"`
	TotalEarned       int64  `json:"total_earned"`
	CurrentLevel      Level  `json:"current_level"`
	NextLevel         *Level `json:"next_level,omitempty"`
	PointsToNextLevel *int64 `json:"points_to_next_level,omitempty"`
}

// BalanceOf projects an account row into a Balance
func BalanceOf(acc LoyaltyAccount) Balance {
	b := Balance{
		UserID:        acc.UserID,
		CurrentPoints: acc.CurrentPoints,
		TotalEarned:   acc.TotalEarned,
		CurrentLevel:  LevelFor(acc.CurrentPoints),
	}
	if next, need, ok := NextLevel(acc.CurrentPoints); ok {
		b.NextLevel = &next
		b.PointsToNextLevel = &need
	}
	return b
}

// FoldTransactions recomputes an account from its ledger
func FoldTransactions(userID int64, txs []PointTransaction) LoyaltyAccount {
	acc := LoyaltyAccount{UserID: userID}
	for _, tx := range txs {
		acc.CurrentPoints += tx.Signed()
		if tx.Type == PointsEarned {
			acc.TotalEarned += tx.Points
		}
	}
	return acc
}
