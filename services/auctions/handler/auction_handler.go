package handler

import (
	"context"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateCategory(ctx context.Context, name, description string) (model.Category, error)
	ListCategories(ctx context.Context, page model.Page) ([]model.Category, error)
	GetCategory(ctx context.Context, name string, page model.Page) (model.CategoryDetails, error)
	CreateItem(ctx context.Context, creatorID string, in model.NewItem) (model.Item, error)
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	ListItems(ctx context.Context, page model.Page) ([]model.Item, error)
	CreateAuction(ctx context.Context, sellerID string, in model.NewAuction) (model.Auction, error)
	ListAuctions(ctx context.Context, status string, page model.Page) ([]model.Auction, error)
	GetAuctionDetails(ctx context.Context, auctionID string, page model.Page) (model.AuctionDetails, error)
	Search(ctx context.Context, query string) (model.SearchResult, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// AuctionHandler serves the catalogue: categories, items, auctions and search
type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateCategoryHandler handles POST /categories
func (h *AuctionHandler) CreateCategoryHandler(c *gin.Context) {
	var req helpers.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCategoryHandler", err)
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		helpers.RespondError(c, "CreateCategoryHandler", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, category, "category created successfully")
	helpers.LogSuccess("CreateCategoryHandler", "category created", map[string]any{"category_id": category.ID})
}

// ListCategoriesHandler handles GET /categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", err, nil)
		return
	}

	categories, err := h.service.ListCategories(c.Request.Context(), page)
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", err, nil)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// GetCategoryHandler handles GET /categories/:name
func (h *AuctionHandler) GetCategoryHandler(c *gin.Context) {
	name := c.Param("name")
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "GetCategoryHandler", err, nil)
		return
	}

	details, err := h.service.GetCategory(c.Request.Context(), name, page)
	if err != nil {
		helpers.RespondError(c, "GetCategoryHandler", err, map[string]any{"name": name})
		return
	}
	if details.Items == nil {
		details.Items = []model.Item{}
	}
	utils.JSONResponse(c, http.StatusOK, details, "category retrieved successfully")
}

// CreateItemHandler handles POST /items
func (h *AuctionHandler) CreateItemHandler(c *gin.Context) {
	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateItemHandler", err)
		return
	}

	creatorID := helpers.CallerID(c)
	item, err := h.service.CreateItem(c.Request.Context(), creatorID, req.Model())
	if err != nil {
		helpers.RespondError(c, "CreateItemHandler", err, map[string]any{"user_id": creatorID, "category_id": req.CategoryID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, item, "item created successfully")
	helpers.LogSuccess("CreateItemHandler", "item created", map[string]any{"item_id": item.ID, "user_id": creatorID})
}

// ListItemsHandler handles GET /items
func (h *AuctionHandler) ListItemsHandler(c *gin.Context) {
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "ListItemsHandler", err, nil)
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), page)
	if err != nil {
		helpers.RespondError(c, "ListItemsHandler", err, nil)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
}

// GetItemHandler handles GET /items/:item_id
func (h *AuctionHandler) GetItemHandler(c *gin.Context) {
	itemID := helpers.PathID(c, "item_id")
	item, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		helpers.RespondError(c, "GetItemHandler", err, map[string]any{"item_id": itemID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, item, "item retrieved successfully")
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	sellerID := helpers.CallerID(c)
	auction, err := h.service.CreateAuction(c.Request.Context(), sellerID, req.Model())
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"user_id": sellerID, "item_id": req.ItemID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created", map[string]any{
		"auction_id": auction.ID,
		"user_id":    sellerID,
		"end_date":   auction.EndDate,
	})
}

// ListAuctionsHandler handles GET /auctions?status=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}

	status := c.Query("status")
	auctions, err := h.service.ListAuctions(c.Request.Context(), status, page)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"status": status})
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}
	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := helpers.PathID(c, "auction_id")
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, nil)
		return
	}

	details, err := h.service.GetAuctionDetails(c.Request.Context(), auctionID, page)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if details.Opinions == nil {
		details.Opinions = []model.Opinion{}
	}
	utils.JSONResponse(c, http.StatusOK, details, "auction retrieved successfully")
}

// SearchHandler handles GET /search?q=
func (h *AuctionHandler) SearchHandler(c *gin.Context) {
	query := c.Query("q")
	res, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		helpers.RespondError(c, "SearchHandler", err, map[string]any{"q": query})
		return
	}

	message := "search completed successfully"
	if res.Empty() {
		message = "no results found"
	}
	utils.JSONResponse(c, http.StatusOK, res, message)
}

// StatsHandler handles GET /stats
func (h *AuctionHandler) StatsHandler(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "StatsHandler", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, stats, "stats retrieved successfully")
}
