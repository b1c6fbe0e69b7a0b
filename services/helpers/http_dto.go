package helpers

import (
	"time"

	model "auction-house/internal/models"
)

// DateLayout is the wire format of calendar dates such as birthdays
const DateLayout = "2006-01-02"

// Request/Response DTOs
type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	BidderID  string  `json:"bidder_id"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

// NewBidResponse formats a bid for the wire
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBidResponses formats a list of bids, never returning nil
func NewBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=64"`
	Description string `json:"description"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required,max=64"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	CategoryID  string  `json:"category_id" binding:"required"`
}

func (r CreateItemRequest) Model() model.NewItem {
	return model.NewItem{Name: r.Name, Description: r.Description, Image: r.Image, CategoryID: r.CategoryID}
}

type CreateAuctionRequest struct {
	Name        string    `json:"name" binding:"required,max=255"`
	ItemID      string    `json:"item_id" binding:"required"`
	MinPrice    float64   `json:"min_price" binding:"required,gt=0"`
	BuyNowPrice *float64  `json:"buy_now_price" binding:"omitempty,gt=0"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

func (r CreateAuctionRequest) Model() model.NewAuction {
	return model.NewAuction{
		Name:        r.Name,
		ItemID:      r.ItemID,
		MinPrice:    r.MinPrice,
		BuyNowPrice: r.BuyNowPrice,
		EndDate:     r.EndDate,
	}
}

type OpinionRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
	Comment string `json:"comment" binding:"required"`
}

// EditOpinionRequest leaves range checks to the service, which checks
// ownership first
type EditOpinionRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type RegisterRequest struct {
	Username        string  `json:"username" binding:"required,max=150"`
	Email           string  `json:"email" binding:"required,email"`
	FirstName       string  `json:"first_name" binding:"max=150"`
	LastName        string  `json:"last_name" binding:"max=150"`
	Password        string  `json:"password" binding:"required"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
	PhoneNumber     *string `json:"phone_number" binding:"omitempty,len=9,numeric"`
	Birthday        string  `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

func (r RegisterRequest) Model() model.Registration {
	return model.Registration{
		Username:        r.Username,
		Email:           r.Email,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		PhoneNumber:     r.PhoneNumber,
		Birthday:        parseDate(r.Birthday),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type ProfileRequest struct {
	FirstName   string  `json:"first_name" binding:"max=150"`
	LastName    string  `json:"last_name" binding:"max=150"`
	Email       string  `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,len=9,numeric"`
	Birthday    string  `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

func (r ProfileRequest) Model() model.ProfileUpdate {
	return model.ProfileUpdate{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Birthday:    parseDate(r.Birthday),
	}
}

// parseDate returns nil for an empty or malformed date; binding has already
// rejected malformed ones
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
