package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, now time.Time) (*AuctionService, *repository.MockAuctionDB, *repository.MockOpinionDB, *repository.MockUserDB) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := repository.NewMockAuctionDB(ctrl)
	opinions := repository.NewMockOpinionDB(ctrl)
	users := repository.NewMockUserDB(ctrl)
	s := NewAuctionService(repo, opinions, users)
	s.now = func() time.Time { return now }
	return s, repo, opinions, users
}

// Tests CreateAuction
func TestAuctionService_CreateAuction(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := model.NewAuction{Name: "Radio", ItemID: "i1", MinPrice: 20, BuyNowPrice: ptr(100.0), EndDate: now.Add(7 * 24 * time.Hour)}

	tests := []struct {
		name       string
		in         func() model.NewAuction
		itemErr    error
		wantFields []string
		wantErr    error
	}{
		{name: "valid", in: func() model.NewAuction { return valid }},
		{name: "buy_now_equal_to_min", in: func() model.NewAuction { v := valid; v.BuyNowPrice = ptr(20.0); return v }},
		{name: "no_buy_now", in: func() model.NewAuction { v := valid; v.BuyNowPrice = nil; return v }},
		{name: "end_date_now", in: func() model.NewAuction { v := valid; v.EndDate = now; return v }, wantFields: []string{"end_date"}},
		{name: "end_date_past", in: func() model.NewAuction { v := valid; v.EndDate = now.Add(-time.Hour); return v }, wantFields: []string{"end_date"}},
		{name: "buy_now_below_min", in: func() model.NewAuction { v := valid; v.BuyNowPrice = ptr(10.0); return v }, wantFields: []string{"buy_now_price"}},
		{name: "non_positive_min", in: func() model.NewAuction { v := valid; v.MinPrice = 0; v.BuyNowPrice = nil; return v }, wantFields: []string{"min_price"}},
		{name: "min_with_cents", in: func() model.NewAuction { v := valid; v.MinPrice = 19.99; return v }},
		{name: "sub_cent_min", in: func() model.NewAuction { v := valid; v.MinPrice = 20.005; return v }, wantFields: []string{"min_price"}},
		{name: "oversized_min", in: func() model.NewAuction { v := valid; v.MinPrice = 1e12; v.BuyNowPrice = nil; return v }, wantFields: []string{"min_price"}},
		{name: "sub_cent_buy_now", in: func() model.NewAuction { v := valid; v.BuyNowPrice = ptr(100.001); return v }, wantFields: []string{"buy_now_price"}},
		{name: "oversized_buy_now", in: func() model.NewAuction { v := valid; v.BuyNowPrice = ptr(100000000.0); return v }, wantFields: []string{"buy_now_price"}},
		{
			name:       "several_fields",
			in:         func() model.NewAuction { return model.NewAuction{EndDate: now.Add(-time.Hour), MinPrice: 5} },
			wantFields: []string{"name", "item_id", "end_date"},
		},
		{name: "unknown_item", in: func() model.NewAuction { return valid }, itemErr: auctionerrors.ErrItemNotFound, wantFields: []string{"item_id"}},
		{name: "repo_failure", in: func() model.NewAuction { return valid }, itemErr: errors.New("db down"), wantErr: errors.New("db down")},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, repo, _, _ := newTestService(t, now)
			in := tc.in()

			if tc.wantFields == nil || tc.itemErr != nil {
				repo.EXPECT().GetItem(gomock.Any(), in.ItemID).Return(model.Item{ID: in.ItemID}, tc.itemErr)
			}
			if tc.wantFields == nil && tc.wantErr == nil {
				repo.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).Return(nil)
			}

			a, err := s.CreateAuction(context.Background(), "seller", in)

			switch {
			case tc.wantErr != nil:
				require.Error(t, err)
				require.False(t, errors.Is(err, auctionerrors.ErrValidation))
			case tc.wantFields != nil:
				require.ErrorIs(t, err, auctionerrors.ErrValidation)
				var verr *auctionerrors.ValidationError
				require.True(t, errors.As(err, &verr))
				fields := verr.FieldMap()
				require.Len(t, fields, len(tc.wantFields))
				for _, f := range tc.wantFields {
					require.Contains(t, fields, f)
				}
			default:
				require.NoError(t, err)
				require.NotEmpty(t, a.ID)
				require.Equal(t, model.StatusAvailable, a.Status)
				require.Nil(t, a.BuyerID)
				require.Equal(t, "seller", a.SellerID)
				require.Equal(t, in.MinPrice, a.MinPrice)
			}
		})
	}
}

// Tests ListAuctions
func TestAuctionService_ListAuctions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := model.NewPage(1, 20)

	t.Run("status_filter_passed_with_clock", func(t *testing.T) {
		t.Parallel()

		s, repo, _, _ := newTestService(t, now)
		repo.EXPECT().ListAuctions(gomock.Any(), model.AuctionFilter{Status: model.StatusExpired, Now: now, Page: page}).
			Return([]model.Auction{{ID: "a1", Status: model.StatusExpired}}, nil)

		got, err := s.ListAuctions(context.Background(), "expired", page)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("unknown_status", func(t *testing.T) {
		t.Parallel()

		s, _, _, _ := newTestService(t, now)
		_, err := s.ListAuctions(context.Background(), "pending", page)
		require.ErrorIs(t, err, auctionerrors.ErrValidation)
	})
}

// Tests GetAuctionDetails
func TestAuctionService_GetAuctionDetails(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page := model.NewPage(1, 20)
	ended := model.Auction{ID: "a1", EndDate: now.Add(-24 * time.Hour), Status: model.StatusAvailable}

	tests := []struct {
		name       string
		ratings    []int
		wantAvg    *float64
		wantStatus model.Status
	}{
		{name: "no_opinions", ratings: []int{}, wantAvg: nil, wantStatus: model.StatusExpired},
		{name: "average_of_ratings", ratings: []int{4, 8, 9}, wantAvg: ptr(7.0), wantStatus: model.StatusExpired},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, repo, opinions, _ := newTestService(t, now)
			repo.EXPECT().GetAuction(gomock.Any(), "a1").Return(ended, nil)
			opinions.EXPECT().ListOpinionsByAuction(gomock.Any(), "a1", page).Return([]model.Opinion{}, nil)
			opinions.EXPECT().RatingsByAuction(gomock.Any(), "a1").Return(tc.ratings, nil)

			d, err := s.GetAuctionDetails(context.Background(), "a1", page)
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, d.Auction.Status)
			require.Equal(t, tc.wantAvg, d.AverageRating)
		})
	}

	t.Run("missing_auction", func(t *testing.T) {
		t.Parallel()

		s, repo, _, _ := newTestService(t, now)
		repo.EXPECT().GetAuction(gomock.Any(), "nope").Return(model.Auction{}, auctionerrors.ErrAuctionNotFound)

		_, err := s.GetAuctionDetails(context.Background(), "nope", page)
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

// Tests Search
func TestAuctionService_Search(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantQuery string
		wantErr   error
	}{
		{name: "empty_means_everything", query: "", wantQuery: ""},
		{name: "three_characters", query: "rad", wantQuery: "rad"},
		{name: "trimmed", query: "  radio ", wantQuery: "radio"},
		{name: "one_character", query: "r", wantErr: auctionerrors.ErrValidation},
		{name: "two_characters", query: "ra", wantErr: auctionerrors.ErrValidation},
		{name: "two_multibyte_characters", query: "ñé", wantErr: auctionerrors.ErrValidation},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, repo, _, _ := newTestService(t, now)
			if tc.wantErr == nil {
				repo.EXPECT().Search(gomock.Any(), tc.wantQuery).Return(model.SearchResult{
					Auctions: []model.Auction{{ID: "a1", EndDate: now.Add(-time.Hour), Status: model.StatusAvailable, BidCount: 2}},
				}, nil)
			}

			res, err := s.Search(context.Background(), tc.query)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.StatusSold, res.Auctions[0].Status)
		})
	}
}

// Tests catalogue operations against the in-memory store
func TestAuctionService_Catalogue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	s := NewAuctionService(repo, repo, repo)
	page := model.NewPage(1, 20)

	_, err := s.CreateCategory(ctx, "  ", "")
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	c, err := s.CreateCategory(ctx, "Electronics", "things with plugs")
	require.NoError(t, err)

	_, err = s.CreateItem(ctx, "u1", model.NewItem{Name: "Radio", CategoryID: "missing"})
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
	require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)

	item, err := s.CreateItem(ctx, "u1", model.NewItem{Name: "Radio", CategoryID: c.ID})
	require.NoError(t, err)
	require.Equal(t, "u1", *item.CreatorID)

	details, err := s.GetCategory(ctx, "Electronics", page)
	require.NoError(t, err)
	require.Equal(t, c.ID, details.Category.ID)
	require.Len(t, details.Items, 1)

	_, err = s.GetCategory(ctx, "Garden", page)
	require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)

	_, err = s.CreateAuction(ctx, "u1", model.NewAuction{Name: "Radio sale", ItemID: item.ID, MinPrice: 10, EndDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, model.Stats{Users: 0, Auctions: 1}, stats)

	require.NoError(t, repo.CreateUser(ctx, model.User{ID: "u1", Username: "alice", Email: "a@example.com"}))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Users, "stats are computed per call")
}
