package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/metrics"
	"auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/utils"
)

const (
	// A bid accepted this close to the end pushes the end back by AntiSnipeExtension
	AntiSnipeWindow    = 20 * time.Minute
	AntiSnipeExtension = 20 * time.Minute
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	users    repository.UserDB
	notifier notify.Notifier
	now      func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, users repository.UserDB, notifier notify.Notifier) *BiddingService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &BiddingService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a user's bid on an auction. The checks and
// both writes run inside the store's per-auction exclusive section.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) (models.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.Invalid("amount", auctionerrors.ErrInvalidBid))
	}
	if msg := models.MoneyProblem(amount); msg != "" {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.InvalidField("amount", msg))
	}

	var (
		bid           models.Bid
		previousBuyer string
		extended      bool
	)

	auction, err := s.repo.ModifyAuction(ctx, auctionID, func(a *models.Auction) (*models.Bid, error) {
		// read the clock under the lock so bid times follow commit order
		now := s.now()
		if err := validateBid(*a, bidderID, amount, now); err != nil {
			return nil, err
		}

		if a.EndDate.Sub(now) <= AntiSnipeWindow {
			a.EndDate = a.EndDate.Add(AntiSnipeExtension)
			extended = true
		}
		if a.BuyerID != nil {
			previousBuyer = *a.BuyerID
		}
		a.MinPrice = amount
		a.BuyerID = &bidderID

		bid = models.Bid{
			ID:        utils.GenerateID(),
			AuctionID: a.ID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: now,
		}
		return &bid, nil
	})
	if err != nil {
		metrics.RecordBid(outcome(err))
		return models.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by user %s: %w", auctionID, bidderID, err)
	}

	metrics.RecordBid("accepted")
	if extended {
		metrics.RecordAntiSnipe()
		utils.Info("anti-snipe extension", map[string]any{"auction_id": auctionID, "end_date": auction.EndDate})
	}
	if previousBuyer != "" && previousBuyer != bidderID {
		s.notifyOutbid(ctx, auction, previousBuyer)
	}
	return bid, nil
}

// validateBid checks the business rules for bidding in the order the user sees them
func validateBid(a models.Auction, bidderID string, amount float64, now time.Time) error {
	if a.SellerID == bidderID {
		return auctionerrors.ErrOwnAuction
	}
	if a.IsBuyer(bidderID) {
		return auctionerrors.ErrAlreadyHighestBidder
	}
	if a.WithDerivedStatus(now).Status != models.StatusAvailable {
		return auctionerrors.ErrAuctionClosed
	}
	if amount <= a.MinPrice {
		return fmt.Errorf("%w - current price is %.2f", auctionerrors.ErrBidTooLow, a.MinPrice)
	}
	return nil
}

// notifyOutbid is best-effort: the bid is already committed
func (s *BiddingService) notifyOutbid(ctx context.Context, auction models.Auction, userID string) {
	notice := models.OutbidNotice{
		AuctionID:   auction.ID,
		AuctionName: auction.Name,
		UserID:      userID,
		NewPrice:    auction.MinPrice,
		OccurredAt:  s.now(),
	}
	if s.users != nil {
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			utils.Warn("outbid notice: user lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		} else {
			notice.Email = user.Email
			if user.PhoneNumber != nil {
				notice.PhoneNumber = *user.PhoneNumber
			}
		}
	}
	if err := s.notifier.NotifyOutbid(ctx, notice); err != nil {
		utils.Warn("outbid notice not delivered", map[string]any{"auction_id": auction.ID, "user_id": userID, "error": err.Error()})
	}
}

// BuyNow sells the auction to buyerID at its buy-now price. It is refused once
// bidding has started. No bid row is created.
func (s *BiddingService) BuyNow(ctx context.Context, auctionID, buyerID string) (models.Auction, error) {
	if auctionID == "" || buyerID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing auctionID or buyerID", auctionerrors.ErrValidation)
	}

	auction, err := s.repo.ModifyAuction(ctx, auctionID, func(a *models.Auction) (*models.Bid, error) {
		now := s.now()
		if a.BuyNowPrice == nil {
			return nil, auctionerrors.ErrBuyNowUnavailable
		}
		if a.SellerID == buyerID {
			return nil, auctionerrors.ErrOwnAuction
		}
		if a.IsBuyer(buyerID) {
			return nil, auctionerrors.ErrAlreadyHighestBidder
		}
		if a.WithDerivedStatus(now).Status != models.StatusAvailable {
			return nil, auctionerrors.ErrAuctionClosed
		}
		if a.BidCount > 0 {
			return nil, auctionerrors.ErrBiddingStarted
		}
		a.Status = models.StatusSold
		a.BuyerID = &buyerID
		return nil, nil
	})
	if err != nil {
		metrics.RecordBuyNow(outcome(err))
		return models.Auction{}, fmt.Errorf("service: failed buy-now on auction %s by user %s: %w", auctionID, buyerID, err)
	}

	metrics.RecordBuyNow("accepted")
	return auction, nil
}

// GetBidsForAuction returns the bids of an auction, newest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string, page models.Page) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetBidsByUser returns all bids a user has placed, newest first
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID string, page models.Page) ([]models.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", userID, err)
	}
	return bids, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return "not_found"
	case errors.Is(err, auctionerrors.ErrOwnAuction):
		return "own_auction"
	case errors.Is(err, auctionerrors.ErrAlreadyHighestBidder):
		return "already_highest"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return "closed"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctionerrors.ErrBuyNowUnavailable):
		return "no_buy_now"
	case errors.Is(err, auctionerrors.ErrBiddingStarted):
		return "bidding_started"
	default:
		return "error"
	}
}
