package reconciler

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/metrics"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/robfig/cron/v3"
)

const runTimeout = 30 * time.Second

// Reconciler periodically persists the derived status of auctions that ended,
// so stored statuses converge even for auctions nobody reads.
type Reconciler struct {
	repo repository.AuctionDB
	cron *cron.Cron
	now  func() time.Time
}

// New schedules the reconciliation job. schedule accepts standard five-field
// cron expressions and descriptors such as "@every 1m".
func New(repo repository.AuctionDB, schedule string) (*Reconciler, error) {
	r := &Reconciler{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
	logger := cronLogger{}
	r.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("reconciler: invalid schedule %q: %w", schedule, err)
	}
	return r, nil
}

// RunOnce reconciles all auctions and returns how many changed status
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	n, err := r.repo.ReconcileStatuses(ctx, r.now())
	metrics.RecordReconcile(n, err == nil)
	if err != nil {
		return 0, fmt.Errorf("reconciler: %w", err)
	}
	return n, nil
}

func (r *Reconciler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	n, err := r.RunOnce(ctx)
	if err != nil {
		utils.Error("status reconciliation failed", map[string]any{"error": err.Error()})
		return
	}
	if n > 0 {
		utils.Info("auction statuses reconciled", map[string]any{"changed": n})
	}
}

// Start runs the schedule in the background
func (r *Reconciler) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running job, or for ctx
func (r *Reconciler) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		utils.Warn("reconciler stop timed out", nil)
	}
}

// cronLogger routes cron's own messages through the application logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	utils.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = fmt.Sprint(err)
	utils.Error("cron: "+msg, fields)
}

func kvFields(kv []interface{}) map[string]any {
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
