package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB, OpinionDB and UserDB
type MemoryRepo struct {
	mu         sync.RWMutex
	categories map[string]model.Category // key: categoryID
	items      map[string]model.Item     // key: itemID
	auctions   map[string]model.Auction  // key: auctionID
	bids       map[string][]model.Bid    // key: auctionID -> value: bids in insertion order
	userBids   map[string][]model.Bid    // key: userID -> value: bids placed by the user
	opinions   map[string]model.Opinion  // key: opinionID
	users      map[string]model.User     // key: userID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		categories: make(map[string]model.Category),
		items:      make(map[string]model.Item),
		auctions:   make(map[string]model.Auction),
		bids:       make(map[string][]model.Bid),
		userBids:   make(map[string][]model.Bid),
		opinions:   make(map[string]model.Opinion),
		users:      make(map[string]model.User),
	}
}

var (
	_ AuctionDB = (*MemoryRepo)(nil)
	_ OpinionDB = (*MemoryRepo)(nil)
	_ UserDB    = (*MemoryRepo)(nil)
)

func paginate[T any](all []T, page model.Page) []T {
	start, end := page.Window(len(all))
	return append([]T{}, all[start:end]...)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// CreateCategory stores a new category
func (r *MemoryRepo) CreateCategory(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = category
	return nil
}

// GetCategoryByName looks a category up by its exact name
func (r *MemoryRepo) GetCategoryByName(_ context.Context, name string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("get category %q: %w", name, auctionerrors.ErrCategoryNotFound)
}

// ListCategories returns categories ordered by name
func (r *MemoryRepo) ListCategories(_ context.Context, page model.Page) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.sortedCategories(""), page), nil
}

func (r *MemoryRepo) sortedCategories(query string) []model.Category {
	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if containsFold(c.Name, query) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CreateItem stores a new item. Its category must exist.
func (r *MemoryRepo) CreateItem(_ context.Context, item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[item.CategoryID]; !ok {
		return fmt.Errorf("create item %s: %w", item.ID, auctionerrors.ErrCategoryNotFound)
	}
	r.items[item.ID] = item
	return nil
}

// GetItem returns an item by id
func (r *MemoryRepo) GetItem(_ context.Context, itemID string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return item, nil
}

// ListItems returns items oldest first
func (r *MemoryRepo) ListItems(_ context.Context, page model.Page) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.sortedItems(func(model.Item) bool { return true }), page), nil
}

// ListItemsByCategory returns the items of one category oldest first
func (r *MemoryRepo) ListItemsByCategory(_ context.Context, categoryID string, page model.Page) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.sortedItems(func(i model.Item) bool { return i.CategoryID == categoryID }), page), nil
}

func (r *MemoryRepo) sortedItems(keep func(model.Item) bool) []model.Item {
	out := make([]model.Item, 0, len(r.items))
	for _, i := range r.items {
		if keep(i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CreateAuction stores a new auction. Its item must exist.
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[auction.ItemID]; !ok {
		return fmt.Errorf("create auction %s: %w", auction.ID, auctionerrors.ErrItemNotFound)
	}
	auction.BidCount = 0
	r.auctions[auction.ID] = auction
	return nil
}

// GetAuction returns the stored auction with its bid count
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a.BidCount = len(r.bids[auctionID])
	return a, nil
}

// ListAuctions returns auctions ordered by end date, filtered on the status
// derived at filter.Now. Stored statuses are left untouched.
func (r *MemoryRepo) ListAuctions(_ context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		a.BidCount = len(r.bids[a.ID])
		a = a.WithDerivedStatus(filter.Now)
		if filter.Status == "" || a.Status == filter.Status {
			out = append(out, a)
		}
	}
	sortAuctions(out)
	return paginate(out, filter.Page), nil
}

func sortAuctions(out []model.Auction) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndDate.Equal(out[j].EndDate) {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		return out[i].ID < out[j].ID
	})
}

// CountAuctions returns the number of stored auctions
func (r *MemoryRepo) CountAuctions(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.auctions), nil
}

// ModifyAuction runs fn on a copy of the auction while holding the write lock,
// then stores the copy and the returned bid together.
func (r *MemoryRepo) ModifyAuction(_ context.Context, auctionID string, fn AuctionFunc) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("modify auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	current.BidCount = len(r.bids[auctionID])

	updated := current
	bid, err := fn(&updated)
	if err != nil {
		return model.Auction{}, err
	}
	updated.ID = current.ID

	if bid != nil {
		bid.AuctionID = auctionID
		r.bids[auctionID] = append(r.bids[auctionID], *bid)
		r.userBids[bid.BidderID] = append(r.userBids[bid.BidderID], *bid)
	}
	updated.BidCount = len(r.bids[auctionID])
	r.auctions[auctionID] = updated
	return updated, nil
}

// ReconcileStatuses persists the derived status of every available auction
// that has ended by now, returning how many changed
func (r *MemoryRepo) ReconcileStatuses(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for id, a := range r.auctions {
		status := model.DeriveStatus(a.Status, a.EndDate, len(r.bids[id]), now)
		if status != a.Status {
			a.Status = status
			r.auctions[id] = a
			changed++
		}
	}
	return changed, nil
}

// GetBidsByAuction returns an auction's bids newest first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string, page model.Page) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return paginate(newestFirst(r.bids[auctionID]), page), nil
}

// GetBidsByUser returns the bids a user placed newest first
func (r *MemoryRepo) GetBidsByUser(_ context.Context, userID string, page model.Page) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(newestFirst(r.userBids[userID]), page), nil
}

func newestFirst(bids []model.Bid) []model.Bid {
	out := make([]model.Bid, len(bids))
	for i, b := range bids {
		out[len(bids)-1-i] = b
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Search matches item, auction and category names case-insensitively.
// An empty query matches everything.
func (r *MemoryRepo) Search(_ context.Context, query string) (model.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := model.SearchResult{
		Items:      r.sortedItems(func(i model.Item) bool { return containsFold(i.Name, query) }),
		Categories: r.sortedCategories(query),
		Auctions:   []model.Auction{},
	}
	for _, a := range r.auctions {
		if containsFold(a.Name, query) {
			a.BidCount = len(r.bids[a.ID])
			res.Auctions = append(res.Auctions, a)
		}
	}
	sortAuctions(res.Auctions)
	return res, nil
}

// CreateOpinion stores a new opinion. Its auction must exist.
func (r *MemoryRepo) CreateOpinion(_ context.Context, opinion model.Opinion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[opinion.AuctionID]; !ok {
		return fmt.Errorf("create opinion %s: %w", opinion.ID, auctionerrors.ErrAuctionNotFound)
	}
	r.opinions[opinion.ID] = opinion
	return nil
}

// GetOpinion returns an opinion by id
func (r *MemoryRepo) GetOpinion(_ context.Context, opinionID string) (model.Opinion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.opinions[opinionID]
	if !ok {
		return model.Opinion{}, fmt.Errorf("get opinion %s: %w", opinionID, auctionerrors.ErrOpinionNotFound)
	}
	return o, nil
}

// UpdateOpinion overwrites rating, comment and edit time of an opinion
func (r *MemoryRepo) UpdateOpinion(_ context.Context, opinion model.Opinion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.opinions[opinion.ID]
	if !ok {
		return fmt.Errorf("update opinion %s: %w", opinion.ID, auctionerrors.ErrOpinionNotFound)
	}
	stored.Rating = opinion.Rating
	stored.Comment = opinion.Comment
	stored.EditedAt = opinion.EditedAt
	r.opinions[opinion.ID] = stored
	return nil
}

// DeleteOpinion removes an opinion
func (r *MemoryRepo) DeleteOpinion(_ context.Context, opinionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.opinions[opinionID]; !ok {
		return fmt.Errorf("delete opinion %s: %w", opinionID, auctionerrors.ErrOpinionNotFound)
	}
	delete(r.opinions, opinionID)
	return nil
}

// ListOpinionsByAuction returns an auction's opinions newest first
func (r *MemoryRepo) ListOpinionsByAuction(_ context.Context, auctionID string, page model.Page) ([]model.Opinion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.auctionOpinions(auctionID), page), nil
}

// RatingsByAuction returns every rating left on an auction
func (r *MemoryRepo) RatingsByAuction(_ context.Context, auctionID string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opinions := r.auctionOpinions(auctionID)
	ratings := make([]int, 0, len(opinions))
	for _, o := range opinions {
		ratings = append(ratings, o.Rating)
	}
	return ratings, nil
}

func (r *MemoryRepo) auctionOpinions(auctionID string) []model.Opinion {
	out := []model.Opinion{}
	for _, o := range r.opinions {
		if o.AuctionID == auctionID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CreateUser stores a new user, enforcing unique username and email
func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrDuplicateUsername)
		}
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrDuplicateEmail)
		}
	}
	r.users[user.ID] = user
	return nil
}

// GetUserByID returns a user by id
func (r *MemoryRepo) GetUserByID(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByUsername returns a user by username
func (r *MemoryRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user %q: %w", username, auctionerrors.ErrUserNotFound)
}

// ListUsers returns users ordered by username
func (r *MemoryRepo) ListUsers(_ context.Context, page model.Page) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return paginate(out, page), nil
}

// UpdateUser overwrites profile and account fields of a user
func (r *MemoryRepo) UpdateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("update user %s: %w", user.ID, auctionerrors.ErrUserNotFound)
	}
	for id, u := range r.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("update user %s: %w", user.ID, auctionerrors.ErrDuplicateEmail)
		}
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.Account = user.Account
	r.users[user.ID] = stored
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *MemoryRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("update password %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	u.PasswordHash = passwordHash
	r.users[userID] = u
	return nil
}

// CountUsers returns the number of registered users
func (r *MemoryRepo) CountUsers(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
