package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
)

// silentNotifier drops notices so benchmarks measure the bidding path only
type silentNotifier struct{}

func (silentNotifier) NotifyOutbid(context.Context, model.OutbidNotice) error { return nil }

var _ notify.Notifier = silentNotifier{}

// seedAuctions stores n auctions named auction_0..auction_n-1 with the given starting price
func seedAuctions(tb testing.TB, repo *repository.MemoryRepo, n int, minPrice float64) {
	tb.Helper()
	ctx := context.Background()
	if err := repo.CreateCategory(ctx, model.Category{ID: "bench", Name: "Benchmark"}); err != nil {
		tb.Fatalf("failed to seed category: %v", err)
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("auction_%d", i)
		if err := repo.CreateItem(ctx, model.Item{ID: "item_" + id, Name: id, CategoryID: "bench"}); err != nil {
			tb.Fatalf("failed to seed item: %v", err)
		}
		err := repo.CreateAuction(ctx, model.Auction{
			ID:       id,
			Name:     fmt.Sprintf("Benchmark auction %d", i),
			ItemID:   "item_" + id,
			SellerID: "seller",
			MinPrice: minPrice,
			EndDate:  time.Now().UTC().Add(24 * time.Hour),
			Status:   model.StatusAvailable,
		})
		if err != nil {
			tb.Fatalf("failed to seed auction: %v", err)
		}
	}
}

func newService(repo *repository.MemoryRepo) *bidding.BiddingService {
	return bidding.NewBiddingService(repo, repo, silentNotifier{})
}

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := newService(repo)
	seedAuctions(b, repo, b.N, 50)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		auctionID := fmt.Sprintf("auction_%d", i)
		bidAmount := float64(51 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, auctionID, userID, bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := newService(repo)
	seedAuctions(b, repo, 1, 50)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, "auction_0", userID, float64(nextBid))
		}
	})
}

// Benchmark 3: GetBidsForAuction - Concurrent readers on one auction
func Benchmark_GetBids_ConcurrentSharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := newService(repo)
	seedAuctions(b, repo, 1, 50)
	ctx := context.Background()

	for j := 0; j < 100; j++ {
		_, _ = svc.PlaceBid(ctx, "auction_0", fmt.Sprintf("user_%d", j), float64(51+j))
	}
	page := model.NewPage(1, 20)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetBidsForAuction(ctx, "auction_0", page); err != nil {
				b.Fatalf("failed to get bids: %v", err)
			}
		}
	})
}

// Benchmark 4: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := newService(repo)
	seedAuctions(b, repo, 1, 50)
	ctx := context.Background()
	page := model.NewPage(1, 1)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, "auction_0", userID, float64(nextBid))
			} else {
				_, _ = svc.GetBidsForAuction(ctx, "auction_0", page)
			}
		}
	})
}
