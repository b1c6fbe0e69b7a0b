package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	account "auction-house/internal/accountService"
	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/notify"
	opinion "auction-house/internal/opinionService"
	"auction-house/internal/repository"
	"auction-house/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testEnv is a router over the in-memory store, with the store exposed for seeding
type testEnv struct {
	router *gin.Engine
	repo   *repository.MemoryRepo
}

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	authn := auth.NewAuthenticator(tokens, auth.NewMemoryRevocationStore())

	router := server.SetupRouter(server.Services{
		Bidding:  bidding.NewBiddingService(repo, repo, notify.LogNotifier{}),
		Auctions: auction.NewAuctionService(repo, repo, repo),
		Opinions: opinion.NewOpinionService(repo, repo),
		Accounts: account.NewAccountService(repo, repo, tokens, authn),
		Auth:     authn,
	})
	return testEnv{router: router, repo: repo}
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the
// response envelope. An empty token sends the request anonymously.
func (e testEnv) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response: %s", w.Body.String())
	}
	return resp, w
}

// data returns the data object of a response envelope
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}

// signUp registers a user and logs them in, returning user id and token
func (e testEnv) signUp(t *testing.T, username string) (string, string) {
	t.Helper()
	resp, w := e.ExecuteRequestAndParse(t, http.MethodPost, "/accounts/register", "", map[string]any{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "s3cret-pass",
		"confirm_password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	userID := data(t, resp)["id"].(string)

	resp, w = e.ExecuteRequestAndParse(t, http.MethodPost, "/accounts/login", "", map[string]any{
		"username": username,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return userID, data(t, resp)["token"].(string)
}

// listAuction creates a category, an item and an auction owned by the token's user
func (e testEnv) listAuction(t *testing.T, token string, minPrice float64, buyNow *float64) string {
	t.Helper()
	resp, w := e.ExecuteRequestAndParse(t, http.MethodPost, "/categories", token, map[string]any{"name": "Cameras"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := data(t, resp)["id"].(string)

	resp, w = e.ExecuteRequestAndParse(t, http.MethodPost, "/items", token, map[string]any{"name": "Leica M3", "category_id": categoryID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := data(t, resp)["id"].(string)

	req := map[string]any{
		"name":      "Leica M3, boxed",
		"item_id":   itemID,
		"min_price": minPrice,
		"end_date":  time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
	}
	if buyNow != nil {
		req["buy_now_price"] = *buyNow
	}
	resp, w = e.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data(t, resp)["id"].(string)
}
