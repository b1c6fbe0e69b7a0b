package opinion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

const (
	MinRating = 1
	MaxRating = 10
)

// OpinionService manages reviews left on auctions
type OpinionService struct {
	auctions repository.AuctionDB
	opinions repository.OpinionDB
	now      func() time.Time
}

// NewOpinionService creates a new OpinionService instance
func NewOpinionService(auctions repository.AuctionDB, opinions repository.OpinionDB) *OpinionService {
	return &OpinionService{
		auctions: auctions,
		opinions: opinions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateOpinion(rating int, comment string) error {
	verr := &auctionerrors.ValidationError{}
	if rating < MinRating || rating > MaxRating {
		verr.Add("rating", fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	if strings.TrimSpace(comment) == "" {
		verr.Add("comment", "this field is required")
	}
	return verr.OrNil()
}

// CreateOpinion stores a review of auctionID written by reviewerID.
// A seller cannot review their own auction.
func (s *OpinionService) CreateOpinion(ctx context.Context, auctionID, reviewerID string, rating int, comment string) (models.Opinion, error) {
	if reviewerID == "" {
		return models.Opinion{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if err := validateOpinion(rating, comment); err != nil {
		return models.Opinion{}, fmt.Errorf("service: %w", err)
	}

	a, err := s.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Opinion{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	if a.SellerID == reviewerID {
		return models.Opinion{}, fmt.Errorf("service: review of auction %s: %w", auctionID, auctionerrors.ErrOwnAuction)
	}

	o := models.Opinion{
		ID:         utils.GenerateID(),
		AuctionID:  auctionID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  s.now(),
	}
	if err := s.opinions.CreateOpinion(ctx, o); err != nil {
		return models.Opinion{}, fmt.Errorf("service: failed to create opinion on auction %s: %w", auctionID, err)
	}
	return o, nil
}

// ownOpinion loads an opinion and checks that callerID wrote it
func (s *OpinionService) ownOpinion(ctx context.Context, opinionID, callerID string) (models.Opinion, error) {
	o, err := s.opinions.GetOpinion(ctx, opinionID)
	if err != nil {
		return models.Opinion{}, fmt.Errorf("service: failed to get opinion %s: %w", opinionID, err)
	}
	if o.ReviewerID != callerID {
		return models.Opinion{}, fmt.Errorf("service: opinion %s belongs to another user: %w", opinionID, auctionerrors.ErrPermissionDenied)
	}
	return o, nil
}

// EditOpinion changes rating and comment of the caller's own opinion.
// Ownership is checked before the new values, so other users always get
// ErrPermissionDenied.
func (s *OpinionService) EditOpinion(ctx context.Context, opinionID, callerID string, rating int, comment string) (models.Opinion, error) {
	o, err := s.ownOpinion(ctx, opinionID, callerID)
	if err != nil {
		return models.Opinion{}, err
	}
	if err := validateOpinion(rating, comment); err != nil {
		return models.Opinion{}, fmt.Errorf("service: %w", err)
	}

	edited := s.now()
	o.Rating = rating
	o.Comment = strings.TrimSpace(comment)
	o.EditedAt = &edited
	if err := s.opinions.UpdateOpinion(ctx, o); err != nil {
		return models.Opinion{}, fmt.Errorf("service: failed to update opinion %s: %w", opinionID, err)
	}
	return o, nil
}

// DeleteOpinion removes the caller's own opinion
func (s *OpinionService) DeleteOpinion(ctx context.Context, opinionID, callerID string) error {
	if _, err := s.ownOpinion(ctx, opinionID, callerID); err != nil {
		return err
	}
	if err := s.opinions.DeleteOpinion(ctx, opinionID); err != nil {
		return fmt.Errorf("service: failed to delete opinion %s: %w", opinionID, err)
	}
	return nil
}

// ListOpinions returns a page of an auction's opinions, newest first
func (s *OpinionService) ListOpinions(ctx context.Context, auctionID string, page models.Page) ([]models.Opinion, error) {
	if _, err := s.auctions.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	opinions, err := s.opinions.ListOpinionsByAuction(ctx, auctionID, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list opinions of auction %s: %w", auctionID, err)
	}
	return opinions, nil
}

// AverageRating returns the mean rating of an auction, or nil when it has no opinions
func (s *OpinionService) AverageRating(ctx context.Context, auctionID string) (*float64, error) {
	ratings, err := s.opinions.RatingsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load ratings of auction %s: %w", auctionID, err)
	}
	avg, ok := models.AverageRating(ratings)
	if !ok {
		return nil, nil
	}
	return &avg, nil
}
