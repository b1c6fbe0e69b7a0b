package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

const (
	MinSearchLength = 3
	maxAuctionName  = 255
	maxItemName     = 64
	maxCategoryName = 64
)

// AuctionService handles the catalogue: categories, items, auctions and search
type AuctionService struct {
	repo     repository.AuctionDB
	opinions repository.OpinionDB
	users    repository.UserDB
	now      func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, opinions repository.OpinionDB, users repository.UserDB) *AuctionService {
	return &AuctionService{
		repo:     repo,
		opinions: opinions,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// nameProblem returns what is wrong with a required name, or ""
func nameProblem(name string, limit int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "this field is required"
	}
	if utf8.RuneCountInString(name) > limit {
		return fmt.Sprintf("must be at most %d characters", limit)
	}
	return ""
}

// CreateCategory adds a category
func (s *AuctionService) CreateCategory(ctx context.Context, name, description string) (models.Category, error) {
	if msg := nameProblem(name, maxCategoryName); msg != "" {
		return models.Category{}, fmt.Errorf("service: %w", auctionerrors.InvalidField("name", msg))
	}

	c := models.Category{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return models.Category{}, fmt.Errorf("service: failed to create category %q: %w", name, err)
	}
	return c, nil
}

// ListCategories returns a page of categories ordered by name
func (s *AuctionService) ListCategories(ctx context.Context, page models.Page) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category by name together with a page of its items
func (s *AuctionService) GetCategory(ctx context.Context, name string, page models.Page) (models.CategoryDetails, error) {
	c, err := s.repo.GetCategoryByName(ctx, name)
	if err != nil {
		return models.CategoryDetails{}, fmt.Errorf("service: failed to get category %q: %w", name, err)
	}
	items, err := s.repo.ListItemsByCategory(ctx, c.ID, page)
	if err != nil {
		return models.CategoryDetails{}, fmt.Errorf("service: failed to list items of category %q: %w", name, err)
	}
	return models.CategoryDetails{Category: c, Items: items}, nil
}

// CreateItem adds an item to an existing category on behalf of creatorID
func (s *AuctionService) CreateItem(ctx context.Context, creatorID string, in models.NewItem) (models.Item, error) {
	if msg := nameProblem(in.Name, maxItemName); msg != "" {
		return models.Item{}, fmt.Errorf("service: %w", auctionerrors.InvalidField("name", msg))
	}
	if in.CategoryID == "" {
		return models.Item{}, fmt.Errorf("service: %w", auctionerrors.InvalidField("category_id", "this field is required"))
	}

	item := models.Item{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
		CreatedAt:   s.now(),
	}
	if creatorID != "" {
		item.CreatorID = &creatorID
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		if errors.Is(err, auctionerrors.ErrCategoryNotFound) {
			return models.Item{}, fmt.Errorf("service: %w", auctionerrors.Invalid("category_id", err))
		}
		return models.Item{}, fmt.Errorf("service: failed to create item %q: %w", in.Name, err)
	}
	return item, nil
}

// GetItem returns an item by id
func (s *AuctionService) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems returns a page of items
func (s *AuctionService) ListItems(ctx context.Context, page models.Page) ([]models.Item, error) {
	items, err := s.repo.ListItems(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items: %w", err)
	}
	return items, nil
}

// CreateAuction lists an item for sale by sellerID. The auction starts
// available with no buyer.
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID string, in models.NewAuction) (models.Auction, error) {
	if err := s.validateAuction(in); err != nil {
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	if _, err := s.repo.GetItem(ctx, in.ItemID); err != nil {
		if errors.Is(err, auctionerrors.ErrItemNotFound) {
			return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.Invalid("item_id", err))
		}
		return models.Auction{}, fmt.Errorf("service: failed to load item %s: %w", in.ItemID, err)
	}

	a := models.Auction{
		ID:          utils.GenerateID(),
		Name:        strings.TrimSpace(in.Name),
		ItemID:      in.ItemID,
		MinPrice:    in.MinPrice,
		BuyNowPrice: in.BuyNowPrice,
		EndDate:     in.EndDate.UTC(),
		SellerID:    sellerID,
		Status:      models.StatusAvailable,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateAuction(ctx, a); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction %q: %w", in.Name, err)
	}
	return a, nil
}

func (s *AuctionService) validateAuction(in models.NewAuction) error {
	verr := &auctionerrors.ValidationError{}
	if msg := nameProblem(in.Name, maxAuctionName); msg != "" {
		verr.Add("name", msg)
	}
	if in.ItemID == "" {
		verr.Add("item_id", "this field is required")
	}
	if msg := models.MoneyProblem(in.MinPrice); msg != "" {
		verr.Add("min_price", msg)
	}
	if in.BuyNowPrice != nil {
		msg := models.MoneyProblem(*in.BuyNowPrice)
		switch {
		case msg != "":
			verr.Add("buy_now_price", msg)
		case *in.BuyNowPrice < in.MinPrice:
			verr.Add("buy_now_price", "buy now price must be at least the minimum price")
		}
	}
	if !in.EndDate.After(s.now()) {
		verr.Add("end_date", "end date must be in the future")
	}

	return verr.OrNil()
}

// ListAuctions returns a page of auctions with their derived status, optionally
// filtered by it. Reading never changes the stored status.
func (s *AuctionService) ListAuctions(ctx context.Context, status string, page models.Page) ([]models.Auction, error) {
	st, ok := models.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("service: %w", auctionerrors.InvalidField("status", "must be one of available, expired, sold"))
	}

	auctions, err := s.repo.ListAuctions(ctx, models.AuctionFilter{Status: st, Now: s.now(), Page: page})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// GetAuctionDetails returns the auction with its derived status, a page of its
// opinions (newest first) and the average rating over all of them
func (s *AuctionService) GetAuctionDetails(ctx context.Context, auctionID string, page models.Page) (models.AuctionDetails, error) {
	a, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	opinions, err := s.opinions.ListOpinionsByAuction(ctx, auctionID, page)
	if err != nil {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to list opinions of auction %s: %w", auctionID, err)
	}
	ratings, err := s.opinions.RatingsByAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to load ratings of auction %s: %w", auctionID, err)
	}

	details := models.AuctionDetails{Auction: a.WithDerivedStatus(s.now()), Opinions: opinions}
	if avg, ok := models.AverageRating(ratings); ok {
		details.AverageRating = &avg
	}
	return details, nil
}

// Search matches item, auction and category names. An empty query means no
// filter; otherwise it needs at least MinSearchLength characters.
func (s *AuctionService) Search(ctx context.Context, query string) (models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if n := utf8.RuneCountInString(query); n > 0 && n < MinSearchLength {
		return models.SearchResult{}, fmt.Errorf("service: %w",
			auctionerrors.InvalidField("q", fmt.Sprintf("search query must be at least %d characters", MinSearchLength)))
	}

	res, err := s.repo.Search(ctx, query)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("service: search %q: %w", query, err)
	}
	now := s.now()
	for i := range res.Auctions {
		res.Auctions[i] = res.Auctions[i].WithDerivedStatus(now)
	}
	return res, nil
}

// Stats counts users and auctions on every call
func (s *AuctionService) Stats(ctx context.Context) (models.Stats, error) {
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("service: count users: %w", err)
	}
	auctions, err := s.repo.CountAuctions(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("service: count auctions: %w", err)
	}
	return models.Stats{Users: users, Auctions: auctions}, nil
}
