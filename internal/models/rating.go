package models

import "math"

// RoomRating is the aggregate of all reviews of a room
type RoomRating struct {
	RoomID        int64   `json:"room_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// AggregateRatings averages ratings, rounded to two decimals. No reviews yields {0, 0}.
func AggregateRatings(roomID int64, reviews []Review) RoomRating {
	r := RoomRating{RoomID: roomID}
	if len(reviews) == 0 {
		return r
	}
	var sum int
	for _, rv := range reviews {
		sum += rv.Rating
	}
	r.TotalReviews = len(reviews)
	r.AverageRating = RoundRating(float64(sum) / float64(len(reviews)))
	return r
}

func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
