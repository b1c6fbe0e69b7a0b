package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      VARCHAR(150) NOT NULL UNIQUE,
		email         VARCHAR(254) NOT NULL UNIQUE,
		first_name    VARCHAR(150) NOT NULL DEFAULT '',
		last_name     VARCHAR(150) NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS accounts (
		user_id      UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		phone_number VARCHAR(9),
		birthday     DATE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          UUID PRIMARY KEY,
		name        VARCHAR(64) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id          UUID PRIMARY KEY,
		name        VARCHAR(64) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image       TEXT,
		category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		creator_id  UUID REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS auctions (
		id            UUID PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		item_id       UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		min_price     NUMERIC(10,2) NOT NULL,
		buy_now_price NUMERIC(10,2),
		end_date      TIMESTAMPTZ NOT NULL,
		seller_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		buyer_id      UUID REFERENCES users(id) ON DELETE CASCADE,
		status        VARCHAR(16) NOT NULL DEFAULT 'available',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bids (
		id         UUID PRIMARY KEY,
		auction_id UUID NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
		bidder_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount     NUMERIC(10,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bids_auction_id_idx ON bids(auction_id)`,
	`CREATE INDEX IF NOT EXISTS bids_bidder_id_idx ON bids(bidder_id)`,
	`CREATE TABLE IF NOT EXISTS opinions (
		id          UUID PRIMARY KEY,
		auction_id  UUID NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
		reviewer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 10),
		comment     TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		edited_at   TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables the store needs when they are missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema statement %d: %w", i, err)
		}
	}
	return nil
}
