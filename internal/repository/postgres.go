package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
)

const (
	uniqueViolation  = "23505"
	invalidTextInput = "22P02" // e.g. a malformed uuid
)

// PostgresRepo implements AuctionDB, OpinionDB and UserDB on PostgreSQL
type PostgresRepo struct {
	db *sqlx.DB
}

var (
	_ AuctionDB = (*PostgresRepo)(nil)
	_ OpinionDB = (*PostgresRepo)(nil)
	_ UserDB    = (*PostgresRepo)(nil)
)

// NewPostgresRepo wraps an open database handle
func NewPostgresRepo(db *sqlx.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Connect opens a pooled connection through the pgx driver and pings it
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(30 * time.Second)
	return db, nil
}

const (
	categorySelect = `SELECT id, name, description, created_at FROM categories`
	itemSelect     = `SELECT id, name, description, image, category_id, creator_id, created_at FROM items`
	auctionSelect  = `
SELECT a.id, a.name, a.item_id, a.min_price, a.buy_now_price, a.end_date, a.seller_id,
       a.buyer_id, a.status, a.created_at,
       (SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id) AS bid_count
FROM auctions a`
	derivedAuctionSelect = `
SELECT id, name, item_id, min_price, buy_now_price, end_date, seller_id, buyer_id,
       CASE
           WHEN status <> 'available' THEN status
           WHEN end_date < $1 AND bid_count > 0 THEN 'sold'
           WHEN end_date < $1 THEN 'expired'
           ELSE 'available'
       END AS status,
       created_at, bid_count
FROM (` + auctionSelect + `) s`
	bidSelect     = `SELECT id, auction_id, bidder_id, amount, created_at FROM bids`
	opinionSelect = `SELECT id, auction_id, reviewer_id, rating, comment, created_at, edited_at FROM opinions`
	userSelect    = `
SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.active, u.created_at,
       ac.phone_number, ac.birthday
FROM users u
LEFT JOIN accounts ac ON ac.user_id = u.id`
)

func isMissing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextInput
}

func notFound(err error, target error, format string, args ...any) error {
	if isMissing(err) {
		return fmt.Errorf(format+": %w", append(args, target)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// escapeLike makes user input literal inside an ILIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CreateCategory stores a new category
func (r *PostgresRepo) CreateCategory(ctx context.Context, c model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category %s: %w", c.ID, err)
	}
	return nil
}

// GetCategoryByName looks a category up by its exact name
func (r *PostgresRepo) GetCategoryByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c, categorySelect+` WHERE name = $1 ORDER BY id LIMIT 1`, name)
	if err != nil {
		return model.Category{}, notFound(err, auctionerrors.ErrCategoryNotFound, "get category %q", name)
	}
	return c, nil
}

// ListCategories returns categories ordered by name
func (r *PostgresRepo) ListCategories(ctx context.Context, page model.Page) ([]model.Category, error) {
	out := []model.Category{}
	err := r.db.SelectContext(ctx, &out, categorySelect+` ORDER BY name, id LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// CreateItem stores a new item
func (r *PostgresRepo) CreateItem(ctx context.Context, i model.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, image, category_id, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.Name, i.Description, i.Image, i.CategoryID, i.CreatorID, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("create item %s: %w", i.ID, err)
	}
	return nil
}

// GetItem returns an item by id
func (r *PostgresRepo) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	var i model.Item
	if err := r.db.GetContext(ctx, &i, itemSelect+` WHERE id = $1`, itemID); err != nil {
		return model.Item{}, notFound(err, auctionerrors.ErrItemNotFound, "get item %s", itemID)
	}
	return i, nil
}

// ListItems returns items oldest first
func (r *PostgresRepo) ListItems(ctx context.Context, page model.Page) ([]model.Item, error) {
	out := []model.Item{}
	err := r.db.SelectContext(ctx, &out, itemSelect+` ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

// ListItemsByCategory returns the items of one category oldest first
func (r *PostgresRepo) ListItemsByCategory(ctx context.Context, categoryID string, page model.Page) ([]model.Item, error) {
	out := []model.Item{}
	err := r.db.SelectContext(ctx, &out,
		itemSelect+` WHERE category_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		categoryID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list items of category %s: %w", categoryID, err)
	}
	return out, nil
}

// CreateAuction stores a new auction
func (r *PostgresRepo) CreateAuction(ctx context.Context, a model.Auction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auctions (id, name, item_id, min_price, buy_now_price, end_date, seller_id, buyer_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Name, a.ItemID, a.MinPrice, a.BuyNowPrice, a.EndDate, a.SellerID, a.BuyerID, string(a.Status), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create auction %s: %w", a.ID, err)
	}
	return nil
}

// GetAuction returns the stored auction with its bid count
func (r *PostgresRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var a model.Auction
	if err := r.db.GetContext(ctx, &a, auctionSelect+` WHERE a.id = $1`, auctionID); err != nil {
		return model.Auction{}, notFound(err, auctionerrors.ErrAuctionNotFound, "get auction %s", auctionID)
	}
	return a, nil
}

// ListAuctions filters on the status derived at filter.Now without writing it back
func (r *PostgresRepo) ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	out := []model.Auction{}
	query := `SELECT * FROM (` + derivedAuctionSelect + `) d
WHERE ($2::text = '' OR d.status = $2::text)
ORDER BY d.end_date, d.id
LIMIT $3 OFFSET $4`
	err := r.db.SelectContext(ctx, &out, query,
		filter.Now, string(filter.Status), filter.Page.Limit(), filter.Page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return out, nil
}

// CountAuctions returns the number of stored auctions
func (r *PostgresRepo) CountAuctions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM auctions`); err != nil {
		return 0, fmt.Errorf("count auctions: %w", err)
	}
	return n, nil
}

// ModifyAuction locks the auction row, lets fn decide, then writes the
// auction and the optional bid in the same transaction
func (r *PostgresRepo) ModifyAuction(ctx context.Context, auctionID string, fn AuctionFunc) (model.Auction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Auction{}, fmt.Errorf("modify auction %s: begin: %w", auctionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM auctions WHERE id = $1 FOR UPDATE`, auctionID); err != nil {
		return model.Auction{}, notFound(err, auctionerrors.ErrAuctionNotFound, "modify auction %s", auctionID)
	}

	var a model.Auction
	if err := tx.GetContext(ctx, &a, auctionSelect+` WHERE a.id = $1`, auctionID); err != nil {
		return model.Auction{}, fmt.Errorf("modify auction %s: load: %w", auctionID, err)
	}

	bid, err := fn(&a)
	if err != nil {
		return model.Auction{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE auctions
		SET min_price = $2, buy_now_price = $3, end_date = $4, buyer_id = $5, status = $6
		WHERE id = $1`,
		auctionID, a.MinPrice, a.BuyNowPrice, a.EndDate, a.BuyerID, string(a.Status))
	if err != nil {
		return model.Auction{}, fmt.Errorf("modify auction %s: update: %w", auctionID, err)
	}

	if bid != nil {
		bid.AuctionID = auctionID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bids (id, auction_id, bidder_id, amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
			bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt)
		if err != nil {
			return model.Auction{}, fmt.Errorf("modify auction %s: insert bid: %w", auctionID, err)
		}
		a.BidCount++
	}

	if err := tx.Commit(); err != nil {
		return model.Auction{}, fmt.Errorf("modify auction %s: commit: %w", auctionID, err)
	}
	a.ID = auctionID
	return a, nil
}

// ReconcileStatuses persists the derived status of ended available auctions
func (r *PostgresRepo) ReconcileStatuses(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions a
		SET status = CASE
		    WHEN EXISTS (SELECT 1 FROM bids b WHERE b.auction_id = a.id) THEN 'sold'
		    ELSE 'expired'
		END
		WHERE a.status = 'available' AND a.end_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("reconcile statuses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reconcile statuses: rows affected: %w", err)
	}
	return int(n), nil
}

// GetBidsByAuction returns an auction's bids newest first
func (r *PostgresRepo) GetBidsByAuction(ctx context.Context, auctionID string, page model.Page) ([]model.Bid, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`, auctionID)
	if err != nil && !isMissing(err) {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	out := []model.Bid{}
	err = r.db.SelectContext(ctx, &out,
		bidSelect+` WHERE auction_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		auctionID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	return out, nil
}

// GetBidsByUser returns the bids a user placed newest first
func (r *PostgresRepo) GetBidsByUser(ctx context.Context, userID string, page model.Page) ([]model.Bid, error) {
	out := []model.Bid{}
	err := r.db.SelectContext(ctx, &out,
		bidSelect+` WHERE bidder_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("get bids for user %s: %w", userID, err)
	}
	return out, nil
}

// Search matches item, auction and category names case-insensitively
func (r *PostgresRepo) Search(ctx context.Context, query string) (model.SearchResult, error) {
	pattern := "%" + escapeLike(query) + "%"
	res := model.SearchResult{Items: []model.Item{}, Auctions: []model.Auction{}, Categories: []model.Category{}}

	if err := r.db.SelectContext(ctx, &res.Items, itemSelect+` WHERE name ILIKE $1 ORDER BY created_at, id`, pattern); err != nil {
		return model.SearchResult{}, fmt.Errorf("search items: %w", err)
	}
	if err := r.db.SelectContext(ctx, &res.Auctions, auctionSelect+` WHERE a.name ILIKE $1 ORDER BY a.end_date, a.id`, pattern); err != nil {
		return model.SearchResult{}, fmt.Errorf("search auctions: %w", err)
	}
	if err := r.db.SelectContext(ctx, &res.Categories, categorySelect+` WHERE name ILIKE $1 ORDER BY name, id`, pattern); err != nil {
		return model.SearchResult{}, fmt.Errorf("search categories: %w", err)
	}
	return res, nil
}

// CreateOpinion stores a new opinion
func (r *PostgresRepo) CreateOpinion(ctx context.Context, o model.Opinion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opinions (id, auction_id, reviewer_id, rating, comment, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.AuctionID, o.ReviewerID, o.Rating, o.Comment, o.CreatedAt, o.EditedAt)
	if err != nil {
		return fmt.Errorf("create opinion %s: %w", o.ID, err)
	}
	return nil
}

// GetOpinion returns an opinion by id
func (r *PostgresRepo) GetOpinion(ctx context.Context, opinionID string) (model.Opinion, error) {
	var o model.Opinion
	if err := r.db.GetContext(ctx, &o, opinionSelect+` WHERE id = $1`, opinionID); err != nil {
		return model.Opinion{}, notFound(err, auctionerrors.ErrOpinionNotFound, "get opinion %s", opinionID)
	}
	return o, nil
}

// UpdateOpinion overwrites rating, comment and edit time of an opinion
func (r *PostgresRepo) UpdateOpinion(ctx context.Context, o model.Opinion) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE opinions SET rating = $2, comment = $3, edited_at = $4 WHERE id = $1`,
		o.ID, o.Rating, o.Comment, o.EditedAt)
	return affectedOne(res, err, auctionerrors.ErrOpinionNotFound, "update opinion %s", o.ID)
}

// DeleteOpinion removes an opinion
func (r *PostgresRepo) DeleteOpinion(ctx context.Context, opinionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM opinions WHERE id = $1`, opinionID)
	return affectedOne(res, err, auctionerrors.ErrOpinionNotFound, "delete opinion %s", opinionID)
}

func affectedOne(res sql.Result, err error, missing error, format string, args ...any) error {
	if err != nil && isMissing(err) {
		return fmt.Errorf(format+": %w", append(args, missing)...)
	}
	if err != nil {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(format+": rows affected: %w", append(args, err)...)
	}
	if n == 0 {
		return fmt.Errorf(format+": %w", append(args, missing)...)
	}
	return nil
}

// ListOpinionsByAuction returns an auction's opinions newest first
func (r *PostgresRepo) ListOpinionsByAuction(ctx context.Context, auctionID string, page model.Page) ([]model.Opinion, error) {
	out := []model.Opinion{}
	err := r.db.SelectContext(ctx, &out,
		opinionSelect+` WHERE auction_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		auctionID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list opinions of auction %s: %w", auctionID, err)
	}
	return out, nil
}

// RatingsByAuction returns every rating left on an auction
func (r *PostgresRepo) RatingsByAuction(ctx context.Context, auctionID string) ([]int, error) {
	out := []int{}
	if err := r.db.SelectContext(ctx, &out, `SELECT rating FROM opinions WHERE auction_id = $1`, auctionID); err != nil {
		return nil, fmt.Errorf("ratings of auction %s: %w", auctionID, err)
	}
	return out, nil
}

func duplicateUser(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return auctionerrors.ErrDuplicateUsername
	case strings.Contains(pgErr.ConstraintName, "email"):
		return auctionerrors.ErrDuplicateEmail
	}
	return err
}

// CreateUser stores a user and its account row
func (r *PostgresRepo) CreateUser(ctx context.Context, u model.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create user %s: begin: %w", u.Username, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Active, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, duplicateUser(err))
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (user_id, phone_number, birthday) VALUES ($1, $2, $3)`,
		u.ID, u.PhoneNumber, u.Birthday)
	if err != nil {
		return fmt.Errorf("create account %s: %w", u.Username, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create user %s: commit: %w", u.Username, err)
	}
	return nil
}

// GetUserByID returns a user by id
func (r *PostgresRepo) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, userSelect+` WHERE u.id = $1`, userID); err != nil {
		return model.User{}, notFound(err, auctionerrors.ErrUserNotFound, "get user %s", userID)
	}
	return u, nil
}

// GetUserByUsername returns a user by username
func (r *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, userSelect+` WHERE u.username = $1`, username); err != nil {
		return model.User{}, notFound(err, auctionerrors.ErrUserNotFound, "get user %q", username)
	}
	return u, nil
}

// ListUsers returns users ordered by username
func (r *PostgresRepo) ListUsers(ctx context.Context, page model.Page) ([]model.User, error) {
	out := []model.User{}
	err := r.db.SelectContext(ctx, &out, userSelect+` ORDER BY u.username LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// UpdateUser overwrites profile fields and upserts the account row
func (r *PostgresRepo) UpdateUser(ctx context.Context, u model.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update user %s: begin: %w", u.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, email = $4 WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email)
	if err != nil {
		err = duplicateUser(err)
	}
	if err := affectedOne(res, err, auctionerrors.ErrUserNotFound, "update user %s", u.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (user_id, phone_number, birthday) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET phone_number = EXCLUDED.phone_number, birthday = EXCLUDED.birthday`,
		u.ID, u.PhoneNumber, u.Birthday)
	if err != nil {
		return fmt.Errorf("update account %s: %w", u.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update user %s: commit: %w", u.ID, err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *PostgresRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	return affectedOne(res, err, auctionerrors.ErrUserNotFound, "update password %s", userID)
}

// CountUsers returns the number of registered users
func (r *PostgresRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
