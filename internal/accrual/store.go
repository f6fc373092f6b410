package accrual

import (
	"InvestxApi/internal/models"
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a referenced row is gone. The
// engine treats it as a per-investment skip, not a fatal error.
var ErrNotFound = errors.New("record not found")

// InvestmentStore is the engine's view of the investments table.
type InvestmentStore interface {
	ListActive(ctx context.Context) ([]models.Investment, error)
	// MarkAccrued advances last_yield_date from lastSeen to now. It
	// returns false when another run already advanced it, which is the
	// compare-and-set half of the once-per-day guard.
	MarkAccrued(ctx context.Context, investmentID int64, lastSeen, now time.Time) (bool, error)
	Deactivate(ctx context.Context, investmentID int64) error
}

type PlanStore interface {
	Get(ctx context.Context, planID int64) (*models.Plan, error)
}

// LedgerStore credits a user's balance and appends the matching
// transaction atomically.
type LedgerStore interface {
	Credit(ctx context.Context, userID int64, txType string, amount float64, description string) error
}

type BonusStore interface {
	Exists(ctx context.Context, investmentID int64) (bool, error)
	Create(ctx context.Context, bonus *models.LoyaltyBonus) error
}

type RunStore interface {
	Record(ctx context.Context, run *models.AccrualRun) error
}

// Stores bundles everything the engine needs from the ledger.
type Stores struct {
	Investments InvestmentStore
	Plans       PlanStore
	Ledger      LedgerStore
	Bonuses     BonusStore
	Runs        RunStore
}
