package models

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusExpired   Status = "expired"
	StatusSold      Status = "sold"
)

// ParseStatus accepts the three known statuses; the empty string means "any"
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case "", StatusAvailable, StatusExpired, StatusSold:
		return st, true
	}
	return "", false
}

// DeriveStatus computes the status an auction has at time now.
// Expired and sold are terminal; an available auction whose end date has
// passed is sold when it received at least one bid and expired otherwise.
func DeriveStatus(stored Status, endDate time.Time, bidCount int, now time.Time) Status {
	if stored != StatusAvailable {
		return stored
	}
	if !endDate.Before(now) {
		return StatusAvailable
	}
	if bidCount > 0 {
		return StatusSold
	}
	return StatusExpired
}

// WithDerivedStatus returns a copy of a carrying its status at time now
func (a Auction) WithDerivedStatus(now time.Time) Auction {
	a.Status = DeriveStatus(a.Status, a.EndDate, a.BidCount, now)
	return a
}

// AverageRating returns the mean of ratings. ok is false when there are none.
func AverageRating(ratings []int) (avg float64, ok bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), true
}
