package server

import (
	"net/http"

	account "auction-house/internal/accountService"
	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/metrics"
	opinion "auction-house/internal/opinionService"
	accountHandler "auction-house/services/accounts/handler"
	auctionHandler "auction-house/services/auctions/handler"
	biddingHandler "auction-house/services/bidding/handler"
	opinionHandler "auction-house/services/opinions/handler"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer serves
type Services struct {
	Bidding  *bidding.BiddingService
	Auctions *auction.AuctionService
	Opinions *opinion.OpinionService
	Accounts *account.AccountService
	Auth     *auth.Authenticator
	Limiter  *RateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(metrics.Instrument())    // prometheus http metrics
	router.Use(RequestLoggerMiddleware) // custom request logging

	bids := biddingHandler.NewBiddingHandler(s.Bidding)
	catalogue := auctionHandler.NewAuctionHandler(s.Auctions)
	opinions := opinionHandler.NewOpinionHandler(s.Opinions)
	accounts := accountHandler.NewAccountHandler(s.Accounts)

	// write routes: authenticated, then throttled per user
	authed := []gin.HandlerFunc{AuthMiddleware(s.Auth)}
	if s.Limiter != nil {
		authed = append(authed, s.Limiter.Middleware())
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, authed...), h)
	}
	public := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if s.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{s.Limiter.Middleware(), h}
	}

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "healthy")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/stats", catalogue.StatsHandler)
	router.GET("/search", catalogue.SearchHandler)

	accountRoutes := router.Group("/accounts")
	{
		accountRoutes.POST("/register", public(accounts.RegisterHandler)...)
		accountRoutes.POST("/login", public(accounts.LoginHandler)...)
		accountRoutes.POST("/logout", write(accounts.LogoutHandler)...)
		accountRoutes.POST("/password", write(accounts.ResetPasswordHandler)...)
	}

	users := router.Group("/users")
	{
		users.GET("", accounts.ListUsersHandler)
		users.GET("/:username", accounts.GetProfileHandler)
		users.PUT("/:user_id", write(accounts.EditProfileHandler)...)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", catalogue.ListCategoriesHandler)
		categories.POST("", write(catalogue.CreateCategoryHandler)...)
		categories.GET("/:name", catalogue.GetCategoryHandler)
	}

	items := router.Group("/items")
	{
		items.GET("", catalogue.ListItemsHandler)
		items.POST("", write(catalogue.CreateItemHandler)...)
		items.GET("/:item_id", catalogue.GetItemHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", catalogue.ListAuctionsHandler)
		auctions.POST("", write(catalogue.CreateAuctionHandler)...)
		auctions.GET("/:auction_id", catalogue.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", bids.GetBidsHandler)
		auctions.POST("/:auction_id/bids", write(bids.PlaceBidHandler)...)
		auctions.POST("/:auction_id/buy-now", write(bids.BuyNowHandler)...)
		auctions.GET("/:auction_id/opinions", opinions.ListOpinionsHandler)
		auctions.POST("/:auction_id/opinions", write(opinions.CreateOpinionHandler)...)
	}

	opinionRoutes := router.Group("/opinions")
	{
		opinionRoutes.PUT("/:opinion_id", write(opinions.EditOpinionHandler)...)
		opinionRoutes.DELETE("/:opinion_id", write(opinions.DeleteOpinionHandler)...)
	}

	return router
}
