package handler

import (
	"context"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type OpinionServiceInterface interface {
	CreateOpinion(ctx context.Context, auctionID, reviewerID string, rating int, comment string) (model.Opinion, error)
	EditOpinion(ctx context.Context, opinionID, callerID string, rating int, comment string) (model.Opinion, error)
	DeleteOpinion(ctx context.Context, opinionID, callerID string) error
	ListOpinions(ctx context.Context, auctionID string, page model.Page) ([]model.Opinion, error)
}

type OpinionHandler struct {
	service OpinionServiceInterface
}

func NewOpinionHandler(service OpinionServiceInterface) *OpinionHandler {
	return &OpinionHandler{service: service}
}

// CreateOpinionHandler handles POST /auctions/:auction_id/opinions
func (h *OpinionHandler) CreateOpinionHandler(c *gin.Context) {
	auctionID := helpers.PathID(c, "auction_id")
	var req helpers.OpinionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateOpinionHandler", err)
		return
	}

	reviewerID := helpers.CallerID(c)
	opinion, err := h.service.CreateOpinion(c.Request.Context(), auctionID, reviewerID, req.Rating, req.Comment)
	if err != nil {
		helpers.RespondError(c, "CreateOpinionHandler", err, map[string]any{"auction_id": auctionID, "user_id": reviewerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, opinion, "opinion created successfully")
	helpers.LogSuccess("CreateOpinionHandler", "opinion created", map[string]any{
		"opinion_id": opinion.ID,
		"auction_id": auctionID,
		"rating":     opinion.Rating,
	})
}

// ListOpinionsHandler handles GET /auctions/:auction_id/opinions
func (h *OpinionHandler) ListOpinionsHandler(c *gin.Context) {
	auctionID := helpers.PathID(c, "auction_id")
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "ListOpinionsHandler", err, nil)
		return
	}

	opinions, err := h.service.ListOpinions(c.Request.Context(), auctionID, page)
	if err != nil {
		helpers.RespondError(c, "ListOpinionsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if opinions == nil {
		opinions = []model.Opinion{}
	}
	utils.JSONResponse(c, http.StatusOK, opinions, "opinions retrieved successfully")
}

// EditOpinionHandler handles PUT /opinions/:opinion_id
func (h *OpinionHandler) EditOpinionHandler(c *gin.Context) {
	opinionID := helpers.PathID(c, "opinion_id")
	var req helpers.EditOpinionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EditOpinionHandler", err)
		return
	}

	callerID := helpers.CallerID(c)
	opinion, err := h.service.EditOpinion(c.Request.Context(), opinionID, callerID, req.Rating, req.Comment)
	if err != nil {
		helpers.RespondError(c, "EditOpinionHandler", err, map[string]any{"opinion_id": opinionID, "user_id": callerID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, opinion, "opinion updated successfully")
}

// DeleteOpinionHandler handles DELETE /opinions/:opinion_id
func (h *OpinionHandler) DeleteOpinionHandler(c *gin.Context) {
	opinionID := helpers.PathID(c, "opinion_id")
	callerID := helpers.CallerID(c)

	if err := h.service.DeleteOpinion(c.Request.Context(), opinionID, callerID); err != nil {
		helpers.RespondError(c, "DeleteOpinionHandler", err, map[string]any{"opinion_id": opinionID, "user_id": callerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"opinion_id": opinionID}, "opinion deleted successfully")
	helpers.LogSuccess("DeleteOpinionHandler", "opinion deleted", map[string]any{"opinion_id": opinionID, "user_id": callerID})
}
