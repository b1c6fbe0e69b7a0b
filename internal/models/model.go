package models

import "time"

// Category groups items, e.g. "Electronics"
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Item is a thing that can be put up for auction
type Item struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Image       *string   `db:"image" json:"image,omitempty"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	CreatorID   *string   `db:"creator_id" json:"creator_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Auction is a timed sale of an item.
// Status is the stored value; readers should expose DeriveStatus instead.
type Auction struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ItemID      string    `db:"item_id" json:"item_id"`
	MinPrice    float64   `db:"min_price" json:"min_price"`
	BuyNowPrice *float64  `db:"buy_now_price" json:"buy_now_price,omitempty"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	SellerID    string    `db:"seller_id" json:"seller_id"`
	BuyerID     *string   `db:"buyer_id" json:"buyer_id,omitempty"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	BidCount    int       `db:"bid_count" json:"bid_count"`
}

// IsBuyer reports whether userID is the auction's current buyer
func (a Auction) IsBuyer(userID string) bool {
	return a.BuyerID != nil && *a.BuyerID == userID
}

// Bid represents a user's bid on an auction. Bids are never updated.
type Bid struct {
	ID        string    `db:"id" json:"id"`
	AuctionID string    `db:"auction_id" json:"auction_id"`
	BidderID  string    `db:"bidder_id" json:"bidder_id"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Opinion is a review left on an auction
type Opinion struct {
	ID         string     `db:"id" json:"id"`
	AuctionID  string     `db:"auction_id" json:"auction_id"`
	ReviewerID string     `db:"reviewer_id" json:"reviewer_id"`
	Rating     int        `db:"rating" json:"rating"`
	Comment    string     `db:"comment" json:"comment"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	EditedAt   *time.Time `db:"edited_at" json:"edited_at,omitempty"`
}

// Account holds the profile extension of a user
type Account struct {
	PhoneNumber *string    `db:"phone_number" json:"phone_number,omitempty"`
	Birthday    *time.Time `db:"birthday" json:"birthday,omitempty"`
}

// User represents a participant in the auction house
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Account
}

// SearchResult bundles the three result sets of a name search
type SearchResult struct {
	Items      []Item     `json:"items"`
	Auctions   []Auction  `json:"auctions"`
	Categories []Category `json:"categories"`
}

// Empty reports whether nothing matched
func (r SearchResult) Empty() bool {
	return len(r.Items) == 0 && len(r.Auctions) == 0 && len(r.Categories) == 0
}

// Stats are the start page counters
type Stats struct {
	Users    int `json:"users"`
	Auctions int `json:"auctions"`
}

// OutbidNotice is sent to a bidder whose leading bid was superseded
type OutbidNotice struct {
	AuctionID   string    `json:"auction_id"`
	AuctionName string    `json:"auction_name"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	NewPrice    float64   `json:"new_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}
