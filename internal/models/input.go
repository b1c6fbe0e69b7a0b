package models

import "time"

// NewAuction is the input for listing an item for sale
type NewAuction struct {
	Name        string
	ItemID      string
	MinPrice    float64
	BuyNowPrice *float64
	EndDate     time.Time
}

// NewItem is the input for creating an item
type NewItem struct {
	Name        string
	Description string
	Image       *string
	CategoryID  string
}

// Registration is the sign-up form
type Registration struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
	PhoneNumber     *string
	Birthday        *time.Time
}

// PasswordChange carries a new password and its confirmation
type PasswordChange struct {
	Password        string
	ConfirmPassword string
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	Birthday    *time.Time
}

// AuctionDetails is an auction with a page of its opinions and the average rating
// over all of them. AverageRating is nil when nobody reviewed the auction.
type AuctionDetails struct {
	Auction       Auction   `json:"auction"`
	Opinions      []Opinion `json:"opinions"`
	AverageRating *float64  `json:"average_rating"`
}

// CategoryDetails is a category with a page of its items
type CategoryDetails struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

// UserProfile is a user with a page of the bids they placed
type UserProfile struct {
	User User  `json:"user"`
	Bids []Bid `json:"bids"`
}

// Session is the result of a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
