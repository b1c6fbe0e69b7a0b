package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/auth"
	model "auction-house/internal/models"
	"auction-house/services/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *MockAuctionServiceInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := NewMockAuctionServiceInterface(ctrl)
	h := NewAuctionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	seller := func(c *gin.Context) {
		helpers.SetClaims(c, &auth.Claims{UserID: "seller1"})
		c.Next()
	}
	router.GET("/stats", h.StatsHandler)
	router.GET("/search", h.SearchHandler)
	router.GET("/categories", h.ListCategoriesHandler)
	router.POST("/categories", seller, h.CreateCategoryHandler)
	router.GET("/categories/:name", h.GetCategoryHandler)
	router.GET("/items", h.ListItemsHandler)
	router.POST("/items", seller, h.CreateItemHandler)
	router.GET("/items/:item_id", h.GetItemHandler)
	router.GET("/auctions", h.ListAuctionsHandler)
	router.POST("/auctions", seller, h.CreateAuctionHandler)
	router.GET("/auctions/:auction_id", h.GetAuctionHandler)
	return router, mockService
}

func do(router *gin.Engine, method, url string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// Test CreateAuctionHandler
func TestCreateAuctionHandler(t *testing.T) {
	end := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	buyNow := 100.0

	tests := []struct {
		name           string
		body           any
		mockSetup      func(m *MockAuctionServiceInterface)
		expectedStatus int
		expectedMsg    string
		expectedFields []string
	}{
		{
			name: "success",
			body: helpers.CreateAuctionRequest{Name: "Radio", ItemID: "item1", MinPrice: 20, BuyNowPrice: &buyNow, EndDate: end},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					CreateAuction(gomock.Any(), "seller1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, in model.NewAuction) (model.Auction, error) {
						require.Equal(t, "Radio", in.Name)
						require.Equal(t, "item1", in.ItemID)
						require.Equal(t, 20.0, in.MinPrice)
						require.Equal(t, buyNow, *in.BuyNowPrice)
						require.True(t, in.EndDate.Equal(end))
						return model.Auction{ID: "a1", Name: "Radio", Status: model.StatusAvailable, SellerID: "seller1"}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "auction created successfully",
		},
		{
			name:           "missing_fields",
			body:           `{"min_price": 0}`,
			mockSetup:      func(*MockAuctionServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
			expectedFields: []string{"name", "item_id", "min_price", "end_date"},
		},
		{
			name: "end_date_in_past",
			body: helpers.CreateAuctionRequest{Name: "Radio", ItemID: "item1", MinPrice: 20, EndDate: end},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().CreateAuction(gomock.Any(), "seller1", gomock.Any()).
					Return(model.Auction{}, auctionerrors.InvalidField("end_date", "end date must be in the future"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed",
			expectedFields: []string{"end_date"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, m := newRouter(t)
			tc.mockSetup(m)

			w, resp := do(router, http.MethodPost, "/auctions", tc.body)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if tc.expectedFields != nil {
				fields := resp["fields"].(map[string]any)
				for _, f := range tc.expectedFields {
					require.Contains(t, fields, f)
				}
			}
		})
	}
}

// Test ListAuctionsHandler
func TestListAuctionsHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(m *MockAuctionServiceInterface)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "filter_expired",
			url:  "/auctions?status=expired",
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().ListAuctions(gomock.Any(), "expired", model.NewPage(1, 20)).
					Return([]model.Auction{{ID: "a1", Status: model.StatusExpired}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name: "empty",
			url:  "/auctions",
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().ListAuctions(gomock.Any(), "", gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "bad_status",
			url:  "/auctions?status=pending",
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().ListAuctions(gomock.Any(), "pending", gomock.Any()).
					Return(nil, auctionerrors.InvalidField("status", "must be one of available, expired, sold"))
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, m := newRouter(t)
			tc.mockSetup(m)

			w, resp := do(router, http.MethodGet, tc.url, nil)
			require.Equal(t, tc.expectedStatus, w.Code)
			if w.Code == http.StatusOK {
				require.Len(t, resp["data"].([]any), tc.expectedCount)
			}
		})
	}
}

// Test GetAuctionHandler
func TestGetAuctionHandler(t *testing.T) {
	t.Run("details_with_average", func(t *testing.T) {
		router, m := newRouter(t)
		avg := 7.5
		m.EXPECT().GetAuctionDetails(gomock.Any(), "a1", gomock.Any()).Return(model.AuctionDetails{
			Auction:       model.Auction{ID: "a1", Status: model.StatusExpired},
			AverageRating: &avg,
		}, nil)

		w, resp := do(router, http.MethodGet, "/auctions/a1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		require.Equal(t, 7.5, data["average_rating"])
		require.Equal(t, []any{}, data["opinions"])
		require.Equal(t, "expired", data["auction"].(map[string]any)["status"])
	})

	t.Run("no_opinions_average_is_null", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().GetAuctionDetails(gomock.Any(), "a1", gomock.Any()).Return(model.AuctionDetails{Auction: model.Auction{ID: "a1"}}, nil)

		w, resp := do(router, http.MethodGet, "/auctions/a1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		require.Contains(t, data, "average_rating")
		require.Nil(t, data["average_rating"])
	})

	t.Run("not_found", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().GetAuctionDetails(gomock.Any(), "nope", gomock.Any()).Return(model.AuctionDetails{}, auctionerrors.ErrAuctionNotFound)

		w, resp := do(router, http.MethodGet, "/auctions/nope", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "auction not found", resp["message"])
	})
}

// Test catalogue handlers
func TestCatalogueHandlers(t *testing.T) {
	t.Run("create_category", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().CreateCategory(gomock.Any(), "Books", "paper").Return(model.Category{ID: "c1", Name: "Books"}, nil)

		w, _ := do(router, http.MethodPost, "/categories", helpers.CreateCategoryRequest{Name: "Books", Description: "paper"})
		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("category_not_found", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().GetCategory(gomock.Any(), "Garden", gomock.Any()).Return(model.CategoryDetails{}, auctionerrors.ErrCategoryNotFound)

		w, _ := do(router, http.MethodGet, "/categories/Garden", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create_item_unknown_category", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().CreateItem(gomock.Any(), "seller1", model.NewItem{Name: "Lamp", CategoryID: "zzz"}).
			Return(model.Item{}, auctionerrors.Invalid("category_id", auctionerrors.ErrCategoryNotFound))

		w, resp := do(router, http.MethodPost, "/items", helpers.CreateItemRequest{Name: "Lamp", CategoryID: "zzz"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "category not found", resp["fields"].(map[string]any)["category_id"])
	})

	t.Run("list_items", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().ListItems(gomock.Any(), model.NewPage(3, 10)).Return([]model.Item{{ID: "i1"}}, nil)

		w, resp := do(router, http.MethodGet, "/items?page=3&page_size=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp["data"].([]any), 1)
	})

	t.Run("get_item_store_failure", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().GetItem(gomock.Any(), "i1").Return(model.Item{}, errors.New("connection refused"))

		w, resp := do(router, http.MethodGet, "/items/i1", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, "internal server error", resp["message"])
	})

	t.Run("list_categories", func(t *testing.T) {
		router, m := newRouter(t)
		m.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return(nil, nil)

		w, resp := do(router, http.MethodGet, "/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []any{}, resp["data"])
	})
}

// Test SearchHandler and StatsHandler
func TestSearchAndStatsHandlers(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		result         model.SearchResult
		serviceErr     error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "matches",
			query:          "radio",
			result:         model.SearchResult{Items: []model.Item{{ID: "i1"}}},
			expectedStatus: http.StatusOK,
			expectedMsg:    "search completed successfully",
		},
		{
			name:           "no_results",
			query:          "zzz",
			expectedStatus: http.StatusOK,
			expectedMsg:    "no results found",
		},
		{
			name:           "too_short",
			query:          "ra",
			serviceErr:     auctionerrors.InvalidField("q", "search query must be at least 3 characters"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, m := newRouter(t)
			m.EXPECT().Search(gomock.Any(), tc.query).Return(tc.result, tc.serviceErr)

			w, resp := do(router, http.MethodGet, "/search?q="+tc.query, nil)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Equal(t, tc.expectedMsg, resp["message"])
		})
	}

	router, m := newRouter(t)
	m.EXPECT().Stats(gomock.Any()).Return(model.Stats{Users: 4, Auctions: 9}, nil)
	w, resp := do(router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, 4.0, data["users"])
	require.Equal(t, 9.0, data["auctions"])
}
