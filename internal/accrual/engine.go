package accrual

import (
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"context"
	"fmt"
	"time"
)

const (
	// LoyaltyBonusDay is the exact day of activity that pays the
	// one-time bonus. Day 29 and day 31 pay nothing.
	LoyaltyBonusDay = 30

	LoyaltyBonusRate = 0.05
)

// Config tunes one engine instance.
type Config struct {
	// TermDays deactivates an investment after that many days of
	// activity, counted from StartDate. Zero keeps investments
	// accruing indefinitely.
	TermDays int

	// Now is the clock, defaults to time.Now.
	Now func() time.Time
}

// YieldEvent is published to the sink after every credited yield.
type YieldEvent struct {
	UserID       int64     `json:"user_id"`
	InvestmentID int64     `json:"investment_id"`
	PlanName     string    `json:"plan_name"`
	Amount       float64   `json:"amount"`
	Timestamp    int64     `json:"timestamp"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventSink receives yield events for the live feed. Failures there must
// never affect the ledger, implementations log and move on.
type EventSink interface {
	PublishYield(ctx context.Context, event YieldEvent)
}

// Summary is what one accrual cycle did.
type Summary struct {
	RunDate              time.Time `json:"run_date"`
	InvestmentsProcessed int       `json:"investments_processed"`
	InvestmentsSkipped   int       `json:"investments_skipped"`
	TotalYieldPaid       float64   `json:"total_yield_paid"`
	BonusesPaid          int       `json:"bonuses_paid"`
}

// Engine applies one day of yield to every eligible active investment and
// pays the one-time loyalty bonus on the 30-day mark.
type Engine struct {
	stores Stores
	sink   EventSink
	cfg    Config
}

func New(stores Stores, sink EventSink, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		stores: stores,
		sink:   sink,
		cfg:    cfg,
	}
}

// Run executes one accrual cycle. Per-investment failures (missing plan,
// missing user, lost compare-and-set) are logged and skipped so the rest
// of the batch still accrues.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	now := e.cfg.Now()
	summary := Summary{RunDate: now}

	investments, err := e.stores.Investments.ListActive(ctx)
	if err != nil {
		return summary, logger.WrapError(err, "")
	}

	for i := range investments {
		inv := &investments[i]

		// already accrued today, idempotence guard
		if sameCalendarDay(inv.LastYieldDate, now) {
			continue
		}

		plan, err := e.stores.Plans.Get(ctx, inv.PlanID)
		if err != nil {
			logger.Warn("accrual: skipping investment %d, plan %d: %v",
				inv.ID, inv.PlanID, err)
			summary.InvestmentsSkipped++
			continue
		}

		accrued, err := e.stores.Investments.MarkAccrued(ctx, inv.ID, inv.LastYieldDate, now)
		if err != nil {
			logger.Warn("accrual: skipping investment %d: %v", inv.ID, err)
			summary.InvestmentsSkipped++
			continue
		}
		if !accrued {
			// another run credited this investment first
			continue
		}

		dailyYield := inv.Amount * plan.DailyInterestRate
		err = e.stores.Ledger.Credit(ctx, inv.UserID, models.TransactionYield, dailyYield,
			fmt.Sprintf("Daily yield from %s plan", plan.Name))
		if err != nil {
			logger.Warn("accrual: yield for investment %d not credited: %v", inv.ID, err)
			summary.InvestmentsSkipped++
			continue
		}

		summary.InvestmentsProcessed++
		summary.TotalYieldPaid += dailyYield

		if e.sink != nil {
			e.sink.PublishYield(ctx, YieldEvent{
				UserID:       inv.UserID,
				InvestmentID: inv.ID,
				PlanName:     plan.Name,
				Amount:       dailyYield,
				Timestamp:    now.UnixNano(),
				CreatedAt:    now,
			})
		}

		days := daysActive(inv.StartDate, now)

		if days == LoyaltyBonusDay {
			if e.payLoyaltyBonus(ctx, inv) {
				summary.BonusesPaid++
			}
		}

		if e.cfg.TermDays > 0 && days >= e.cfg.TermDays {
			if err := e.stores.Investments.Deactivate(ctx, inv.ID); err != nil {
				logger.Warn("accrual: investment %d not deactivated: %v", inv.ID, err)
			}
		}
	}

	if err := e.stores.Runs.Record(ctx, &models.AccrualRun{
		RunDate:              summary.RunDate,
		InvestmentsProcessed: summary.InvestmentsProcessed,
		InvestmentsSkipped:   summary.InvestmentsSkipped,
		TotalYieldPaid:       summary.TotalYieldPaid,
		BonusesPaid:          summary.BonusesPaid,
	}); err != nil {
		logger.Error("accrual: run summary not recorded: %v", err)
	}

	return summary, nil
}

// payLoyaltyBonus pays the one-time 5% bonus unless a LoyaltyBonus row
// already exists for the investment. Returns whether a bonus was paid.
func (e *Engine) payLoyaltyBonus(ctx context.Context, inv *models.Investment) bool {
	exists, err := e.stores.Bonuses.Exists(ctx, inv.ID)
	if err != nil {
		logger.Warn("accrual: bonus check for investment %d: %v", inv.ID, err)
		return false
	}
	if exists {
		return false
	}

	bonus := inv.Amount * LoyaltyBonusRate
	err = e.stores.Ledger.Credit(ctx, inv.UserID, models.TransactionBonus, bonus,
		fmt.Sprintf("30-day loyalty bonus on investment #%d", inv.ID))
	if err != nil {
		logger.Warn("accrual: bonus for investment %d not credited: %v", inv.ID, err)
		return false
	}

	if err := e.stores.Bonuses.Create(ctx, &models.LoyaltyBonus{
		UserID:       inv.UserID,
		InvestmentID: inv.ID,
		Amount:       bonus,
	}); err != nil {
		logger.Error("accrual: bonus record for investment %d not created: %v", inv.ID, err)
	}

	return true
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysActive is the whole number of 24h periods since start.
func daysActive(start, now time.Time) int {
	return int(now.Sub(start).Hours() / 24)
}
