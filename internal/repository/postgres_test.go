package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var auctionColumns = []string{
	"id", "name", "item_id", "min_price", "buy_now_price", "end_date",
	"seller_id", "buyer_id", "status", "created_at", "bid_count",
}

func newMockRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepo(sqlx.NewDb(db, "pgx")), mock
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), sqlx.NewDb(db, "pgx")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ModifyAuction(t *testing.T) {
	end := time.Now().Add(time.Hour)
	lockQuery := regexp.QuoteMeta(`SELECT id FROM auctions WHERE id = $1 FOR UPDATE`)
	loadQuery := regexp.QuoteMeta(`FROM auctions a WHERE a.id = $1`)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		fn      AuctionFunc
		wantErr error
	}{
		{
			name: "bid_committed_with_auction",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("a1").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
				mock.ExpectQuery(loadQuery).WithArgs("a1").WillReturnRows(sqlmock.NewRows(auctionColumns).
					AddRow("a1", "Radio", "i1", 20.0, 100.0, end, "seller", nil, "available", end.Add(-time.Hour), int64(0)))
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE auctions`)).
					WithArgs("a1", 50.0, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "available").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bids`)).
					WithArgs("b1", "a1", "u1", 50.0, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: raiseTo("b1", "u1", 50),
		},
		{
			name: "rejected_bid_rolls_back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("a1").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
				mock.ExpectQuery(loadQuery).WithArgs("a1").WillReturnRows(sqlmock.NewRows(auctionColumns).
					AddRow("a1", "Radio", "i1", 50.0, nil, end, "seller", "u1", "available", end.Add(-time.Hour), int64(1)))
				mock.ExpectRollback()
			},
			fn:      raiseTo("b2", "u2", 30),
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name: "missing_auction",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lockQuery).WithArgs("a1").WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			fn:      raiseTo("b3", "u3", 60),
			wantErr: auctionerrors.ErrAuctionNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			tc.setup(mock)

			a, err := repo.ModifyAuction(context.Background(), "a1", tc.fn)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, 50.0, a.MinPrice)
				require.Equal(t, 1, a.BidCount)
				require.True(t, a.IsBuyer("u1"))
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepo_ListAuctions(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ($2::text = '' OR d.status = $2::text)`)).
		WithArgs(now, "expired", 20, 0).
		WillReturnRows(sqlmock.NewRows(auctionColumns).
			AddRow("a1", "Radio", "i1", 20.0, nil, now.Add(-time.Hour), "seller", nil, "expired", now.Add(-48*time.Hour), int64(0)))

	got, err := repo.ListAuctions(context.Background(), model.AuctionFilter{Status: model.StatusExpired, Now: now, Page: model.NewPage(1, 0)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.StatusExpired, got[0].Status)
	require.Nil(t, got[0].BuyNowPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ReconcileStatuses(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE a.status = 'available' AND a.end_date < $1`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReconcileStatuses(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CreateUser(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{name: "duplicate_username", constraint: "users_username_key", wantErr: auctionerrors.ErrDuplicateUsername},
		{name: "duplicate_email", constraint: "users_email_key", wantErr: auctionerrors.ErrDuplicateEmail},
		{name: "duplicate_email_other_case", constraint: "users_email_lower_key", wantErr: auctionerrors.ErrDuplicateEmail},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
				WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: tc.constraint})
			mock.ExpectRollback()

			err := repo.CreateUser(context.Background(), model.User{ID: "u1", Username: "alice", Email: "a@example.com"})
			require.ErrorIs(t, err, tc.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("user_and_account_in_one_transaction", func(t *testing.T) {
		t.Parallel()

		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateUser(context.Background(), model.User{ID: "u1", Username: "alice", Email: "a@example.com"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepo_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM auctions a WHERE a.id = $1`)).WithArgs("x").
		WillReturnRows(sqlmock.NewRows(auctionColumns))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM opinions`)).WithArgs("o1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.GetAuction(ctx, "x")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	require.ErrorIs(t, repo.DeleteOpinion(ctx, "o1"), auctionerrors.ErrOpinionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SearchEscapesWildcards(t *testing.T) {
	repo, mock := newMockRepo(t)
	pattern := `%50\%\_off%`

	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE name ILIKE $1`)).WithArgs(pattern).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "image", "category_id", "creator_id", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.name ILIKE $1`)).WithArgs(pattern).
		WillReturnRows(sqlmock.NewRows(auctionColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE name ILIKE $1`)).WithArgs(pattern).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}))

	res, err := repo.Search(context.Background(), "50%_off")
	require.NoError(t, err)
	require.True(t, res.Empty())
	require.NoError(t, mock.ExpectationsWereMet())
}
