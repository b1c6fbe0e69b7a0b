package repository

import (
	"context"
	"time"

	"auction-house/internal/models"
)

// AuctionFunc inspects and mutates an auction inside the store's exclusive
// section. A non-nil bid is persisted together with the auction; a non-nil
// error discards every change.
type AuctionFunc func(auction *models.Auction) (*models.Bid, error)

// AuctionDB defines the storage interface for categories, items, auctions and bids
type AuctionDB interface {
	CreateCategory(ctx context.Context, category models.Category) error
	GetCategoryByName(ctx context.Context, name string) (models.Category, error)
	ListCategories(ctx context.Context, page models.Page) ([]models.Category, error)

	CreateItem(ctx context.Context, item models.Item) error
	GetItem(ctx context.Context, itemID string) (models.Item, error)
	ListItems(ctx context.Context, page models.Page) ([]models.Item, error)
	ListItemsByCategory(ctx context.Context, categoryID string, page models.Page) ([]models.Item, error)

	CreateAuction(ctx context.Context, auction models.Auction) error
	GetAuction(ctx context.Context, auctionID string) (models.Auction, error)
	ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.Auction, error)
	CountAuctions(ctx context.Context) (int, error)
	ModifyAuction(ctx context.Context, auctionID string, fn AuctionFunc) (models.Auction, error)
	ReconcileStatuses(ctx context.Context, now time.Time) (int, error)

	GetBidsByAuction(ctx context.Context, auctionID string, page models.Page) ([]models.Bid, error)
	GetBidsByUser(ctx context.Context, userID string, page models.Page) ([]models.Bid, error)

	Search(ctx context.Context, query string) (models.SearchResult, error)
}

// OpinionDB defines the storage interface for auction reviews
type OpinionDB interface {
	CreateOpinion(ctx context.Context, opinion models.Opinion) error
	GetOpinion(ctx context.Context, opinionID string) (models.Opinion, error)
	UpdateOpinion(ctx context.Context, opinion models.Opinion) error
	DeleteOpinion(ctx context.Context, opinionID string) error
	ListOpinionsByAuction(ctx context.Context, auctionID string, page models.Page) ([]models.Opinion, error)
	RatingsByAuction(ctx context.Context, auctionID string) ([]int, error)
}

// UserDB defines the storage interface for users and their accounts
type UserDB interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	CountUsers(ctx context.Context) (int, error)
}
