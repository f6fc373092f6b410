package service

import (
	"InvestxApi/internal/accrual"
	"InvestxApi/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var investNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// fakeLedger is an in-memory double for the invest flow. It also
// implements the accrual store interfaces so tests can run a full
// invest-then-accrue cycle against one state.
type fakeLedger struct {
	plans        map[int64]models.Plan
	users        map[int64]*models.User
	referrals    map[int64]*models.UserReferral
	investments  []*models.Investment
	transactions []models.Transaction
	bonuses      map[int64]models.LoyaltyBonus
	runs         []models.AccrualRun
	nextID       int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		plans:     make(map[int64]models.Plan),
		users:     make(map[int64]*models.User),
		referrals: make(map[int64]*models.UserReferral),
		bonuses:   make(map[int64]models.LoyaltyBonus),
	}
}

func (f *fakeLedger) GetPlan(planID int64) (*models.Plan, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, nil
	}
	return &plan, nil
}

func (f *fakeLedger) GetUserForUpdate(userID int64) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeLedger) CreateInvestment(investment *models.Investment) error {
	f.nextID++
	investment.ID = f.nextID
	clone := *investment
	f.investments = append(f.investments, &clone)
	return nil
}

func (f *fakeLedger) ApplyBalanceChange(userID int64, txType string, amount float64, description string) error {
	user, ok := f.users[userID]
	if !ok {
		return models.ErrUserGone
	}
	user.Balance += amount
	f.transactions = append(f.transactions, models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	})
	return nil
}

func (f *fakeLedger) ActiveReferralByReferred(referredID int64) (*models.UserReferral, error) {
	referral, ok := f.referrals[referredID]
	if !ok || !referral.IsActive {
		return nil, nil
	}
	return referral, nil
}

func (f *fakeLedger) SaveReferral(referral *models.UserReferral) error {
	f.referrals[referral.ReferredID] = referral
	return nil
}

func (f *fakeLedger) ListActive(ctx context.Context) ([]models.Investment, error) {
	var active []models.Investment
	for _, inv := range f.investments {
		if inv.IsActive {
			active = append(active, *inv)
		}
	}
	return active, nil
}

func (f *fakeLedger) MarkAccrued(ctx context.Context, investmentID int64, lastSeen, now time.Time) (bool, error) {
	for _, inv := range f.investments {
		if inv.ID == investmentID && inv.LastYieldDate.Equal(lastSeen) {
			inv.LastYieldDate = now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) Deactivate(ctx context.Context, investmentID int64) error {
	for _, inv := range f.investments {
		if inv.ID == investmentID {
			inv.IsActive = false
			return nil
		}
	}
	return accrual.ErrNotFound
}

func (f *fakeLedger) Get(ctx context.Context, planID int64) (*models.Plan, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, accrual.ErrNotFound
	}
	return &plan, nil
}

func (f *fakeLedger) Credit(ctx context.Context, userID int64, txType string, amount float64, description string) error {
	return f.ApplyBalanceChange(userID, txType, amount, description)
}

func (f *fakeLedger) Exists(ctx context.Context, investmentID int64) (bool, error) {
	_, ok := f.bonuses[investmentID]
	return ok, nil
}

func (f *fakeLedger) Create(ctx context.Context, bonus *models.LoyaltyBonus) error {
	f.bonuses[bonus.InvestmentID] = *bonus
	return nil
}

func (f *fakeLedger) Record(ctx context.Context, run *models.AccrualRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeLedger) stores() accrual.Stores {
	return accrual.Stores{
		Investments: f,
		Plans:       f,
		Ledger:      f,
		Bonuses:     f,
		Runs:        f,
	}
}

func (f *fakeLedger) userTransactions(userID int64) []models.Transaction {
	var out []models.Transaction
	for _, entry := range f.transactions {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out
}

func seedGoldPlan(f *fakeLedger) {
	f.plans[10] = models.Plan{
		ID:                10,
		Name:              "Gold",
		MinimumInvestment: 100,
		DailyInterestRate: 0.10,
		IsActive:          true,
	}
}

func TestPlaceInvestmentDebitsBalanceAndRecordsEntry(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 1000}

	investment, err := placeInvestment(f, 1, 10, 500, investNow)
	require.NoError(t, err)

	assert.InDelta(t, 500.0, f.users[1].Balance, 1e-9)
	assert.True(t, investment.IsActive)
	assert.True(t, investment.StartDate.Equal(investNow))
	assert.True(t, investment.LastYieldDate.Equal(investNow))

	entries := f.userTransactions(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionInvestment, entries[0].Type)
	assert.InDelta(t, -500.0, entries[0].Amount, 1e-9)
}

func TestPlaceInvestmentPaysReferrerFivePercent(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	referrerID := int64(1)
	f.users[1] = &models.User{ID: 1, Nickname: "bob", Balance: 0}
	f.users[2] = &models.User{ID: 2, Nickname: "alice", Balance: 500, ReferredByID: &referrerID}
	f.referrals[2] = &models.UserReferral{ID: 5, ReferrerID: 1, ReferredID: 2, ReferredNickname: "alice", IsActive: true}

	_, err := placeInvestment(f, 2, 10, 200, investNow)
	require.NoError(t, err)

	// commission lands in the same call, no accrual run involved
	assert.InDelta(t, 10.0, f.users[1].Balance, 1e-9)
	assert.Empty(t, f.runs)

	entries := f.userTransactions(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionCommission, entries[0].Type)
	assert.InDelta(t, 10.0, entries[0].Amount, 1e-9)

	assert.InDelta(t, 10.0, f.referrals[2].EarnedAmount, 1e-9)
}

func TestPlaceInvestmentPaysNoCommissionWithoutReferrer(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 500}

	_, err := placeInvestment(f, 1, 10, 200, investNow)
	require.NoError(t, err)

	for _, entry := range f.transactions {
		assert.NotEqual(t, models.TransactionCommission, entry.Type)
	}
}

func TestPlaceInvestmentRejectsInsufficientBalance(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 100}

	_, err := placeInvestment(f, 1, 10, 500, investNow)
	assert.ErrorIs(t, err, errInsufficientBalance)

	// rejection leaves the ledger untouched
	assert.InDelta(t, 100.0, f.users[1].Balance, 1e-9)
	assert.Empty(t, f.transactions)
	assert.Empty(t, f.investments)
}

func TestPlaceInvestmentRejectsBelowPlanMinimum(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 1000}

	_, err := placeInvestment(f, 1, 10, 50, investNow)
	assert.ErrorIs(t, err, errBelowMinimum)
	assert.Empty(t, f.transactions)
}

func TestPlaceInvestmentRejectsInactivePlan(t *testing.T) {
	f := newFakeLedger()
	f.plans[10] = models.Plan{ID: 10, Name: "Retired", MinimumInvestment: 100, DailyInterestRate: 0.05}
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 1000}

	_, err := placeInvestment(f, 1, 10, 500, investNow)
	assert.ErrorIs(t, err, errPlanInactive)
	assert.Empty(t, f.transactions)
}

func TestPlaceInvestmentRejectsUnknownPlan(t *testing.T) {
	f := newFakeLedger()
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 1000}

	_, err := placeInvestment(f, 1, 99, 500, investNow)
	assert.ErrorIs(t, err, errPlanNotFound)
	assert.Empty(t, f.transactions)
}

// A user with balance 1000 invests 500 on a 10% plan: balance drops to
// 500 at creation and reaches 550 after the next accrual cycle.
func TestInvestThenAccrueBalanceScenario(t *testing.T) {
	f := newFakeLedger()
	seedGoldPlan(f)
	f.users[1] = &models.User{ID: 1, Nickname: "alice", Balance: 1000}

	_, err := placeInvestment(f, 1, 10, 500, investNow)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, f.users[1].Balance, 1e-9)

	nextDay := investNow.Add(24 * time.Hour)
	engine := accrual.New(f.stores(), nil, accrual.Config{Now: func() time.Time { return nextDay }})

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.InvestmentsProcessed)

	assert.InDelta(t, 550.0, f.users[1].Balance, 1e-9)

	entries := f.userTransactions(1)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TransactionInvestment, entries[0].Type)
	assert.InDelta(t, -500.0, entries[0].Amount, 1e-9)
	assert.Equal(t, models.TransactionYield, entries[1].Type)
	assert.InDelta(t, 50.0, entries[1].Amount, 1e-9)
}

func TestInvestmentInputValidation(t *testing.T) {
	assert.Error(t, (&investmentInput{}).Validate())
	assert.Error(t, (&investmentInput{PlanID: 1, Amount: -100}).Validate())
	assert.NoError(t, (&investmentInput{PlanID: 1, Amount: 500}).Validate())
}

func TestPlanInputValidation(t *testing.T) {
	assert.Error(t, (&planInput{}).Validate())
	// a daily rate of 1.0 or more would at least double balances daily
	assert.Error(t, (&planInput{Name: "Gold", MinimumInvestment: 100, DailyInterestRate: 1.5}).Validate())
	assert.NoError(t, (&planInput{Name: "Gold", MinimumInvestment: 100, DailyInterestRate: 0.05}).Validate())
}

func TestRegisterInputValidation(t *testing.T) {
	assert.Error(t, (&registerInput{Nickname: "ab", Password: "longenough"}).Validate())
	assert.Error(t, (&registerInput{Nickname: "alice", Password: "short"}).Validate())
	assert.NoError(t, (&registerInput{Nickname: "alice", Password: "longenough"}).Validate())
	// referral code is optional
	assert.NoError(t, (&registerInput{Nickname: "alice", Password: "longenough", ReferralCode: "7"}).Validate())
}
