package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	account "auction-house/internal/accountService"
	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	opinion "auction-house/internal/opinionService"
	"auction-house/internal/reconciler"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// store is everything the services need from persistence
type store interface {
	repository.AuctionDB
	repository.OpinionDB
	repository.UserDB
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Warn("failed to read .env file", map[string]any{"error": err.Error()})
	}

	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	repo, closeRepo := openStore(ctx, cfg)
	defer closeRepo()

	revocations, closeRevocations := openRevocationStore(cfg)
	defer closeRevocations()

	notifier, closeNotifier := openNotifier(cfg)
	defer closeNotifier()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authn := auth.NewAuthenticator(tokens, revocations)

	services := server.Services{
		Bidding:  bidding.NewBiddingService(repo, repo, notifier),
		Auctions: auction.NewAuctionService(repo, repo, repo),
		Opinions: opinion.NewOpinionService(repo, repo),
		Accounts: account.NewAccountService(repo, repo, tokens, authn),
		Auth:     authn,
		Limiter:  server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, services); err != nil {
			utils.Warn("demo data not seeded", map[string]any{"error": err.Error()})
		}
	}

	rec, err := reconciler.New(repo, cfg.ReconcileSchedule)
	if err != nil {
		utils.Fatal("invalid reconcile schedule", map[string]any{"error": err.Error()})
	}
	rec.Start()

	stopCleanup := make(chan struct{})
	go cleanupLimiter(services.Limiter, stopCleanup)

	router := server.SetupRouter(services)
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
	close(stopCleanup)
	rec.Stop(shutdownCtx)
}

// openStore connects to Postgres when DATABASE_URL is set, else keeps
// everything in memory
func openStore(ctx context.Context, cfg config.Config) (store, func()) {
	if cfg.DatabaseURL == "" {
		utils.Info("using in-memory store", nil)
		return repository.NewMemoryRepo(), func() {}
	}

	db, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		utils.Fatal("failed to connect to database", map[string]any{"error": err.Error()})
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		utils.Fatal("failed to create schema", map[string]any{"error": err.Error()})
	}
	utils.Info("using postgres store", nil)
	return repository.NewPostgresRepo(db), func() { _ = db.Close() }
}

func openRevocationStore(cfg config.Config) (auth.RevocationStore, func()) {
	if cfg.RedisAddr == "" {
		return auth.NewMemoryRevocationStore(), func() {}
	}
	rdb := auth.NewRedisClient(cfg.RedisAddr)
	utils.Info("using redis revocation store", map[string]any{"addr": cfg.RedisAddr})
	return auth.NewRedisRevocationStore(rdb), func() { _ = rdb.Close() }
}

func openNotifier(cfg config.Config) (notify.Notifier, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.LogNotifier{}, func() {}
	}
	n := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.OutbidTopic, cfg.ServiceName, 256)
	utils.Info("publishing outbid notices to kafka", map[string]any{"brokers": cfg.KafkaBrokers, "topic": cfg.OutbidTopic})
	return n, func() {
		if err := n.Close(); err != nil {
			utils.Error("failed to close kafka notifier", map[string]any{"error": err.Error()})
		}
	}
}

func cleanupLimiter(rl *server.RateLimiter, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-stop:
			return
		}
	}
}

// seedDemoData adds a seller with a few open auctions
func seedDemoData(ctx context.Context, s server.Services) error {
	seller, err := s.Accounts.Register(ctx, model.Registration{
		Username:        "demo",
		Email:           "demo@example.com",
		FirstName:       "Demo",
		LastName:        "Seller",
		Password:        "demo-password",
		ConfirmPassword: "demo-password",
	})
	if err != nil {
		return err
	}

	category, err := s.Auctions.CreateCategory(ctx, "Collectibles", "Things worth keeping")
	if err != nil {
		return err
	}

	buyNow := 150.0
	listings := []struct {
		name   string
		min    float64
		buyNow *float64
	}{
		{"Vintage camera", 40, &buyNow},
		{"Signed vinyl", 25, nil},
		{"Pocket watch", 60, nil},
	}
	for i, l := range listings {
		item, err := s.Auctions.CreateItem(ctx, seller.ID, model.NewItem{Name: l.name, CategoryID: category.ID})
		if err != nil {
			return err
		}
		_, err = s.Auctions.CreateAuction(ctx, seller.ID, model.NewAuction{
			Name:        l.name,
			ItemID:      item.ID,
			MinPrice:    l.min,
			BuyNowPrice: l.buyNow,
			EndDate:     time.Now().UTC().Add(time.Duration(i+1) * 24 * time.Hour),
		})
		if err != nil {
			return err
		}
	}
	utils.Info("demo data seeded", map[string]any{"seller": seller.Username, "auctions": len(listings)})
	return nil
}
