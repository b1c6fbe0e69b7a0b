package notify

import (
	"context"
	"errors"

	"auction-house/internal/metrics"
	"auction-house/internal/models"
	"auction-house/utils"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notifier is closed")
)

// Notifier delivers outbid notices. Implementations must not block the caller
// for long: notices are sent after the bid has been committed.
type Notifier interface {
	NotifyOutbid(ctx context.Context, notice models.OutbidNotice) error
}

// LogNotifier writes notices to the log. Used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyOutbid(_ context.Context, notice models.OutbidNotice) error {
	utils.Info("outbid notice", map[string]any{
		"auction_id": notice.AuctionID,
		"user_id":    notice.UserID,
		"email":      notice.Email,
		"phone":      notice.PhoneNumber,
		"new_price":  notice.NewPrice,
	})
	metrics.RecordNotification("logged")
	return nil
}
