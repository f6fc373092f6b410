package accrual

import (
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// GormStore backs the engine's store interfaces with the Postgres ledger.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// NewStores wires every engine interface to the same gorm handle.
func NewStores(db *gorm.DB) Stores {
	store := NewGormStore(db)
	return Stores{
		Investments: store,
		Plans:       store,
		Ledger:      store,
		Bonuses:     store,
		Runs:        store,
	}
}

func (s *GormStore) ListActive(ctx context.Context) ([]models.Investment, error) {
	return models.GetActiveInvestments(s.db.WithContext(ctx))
}

// MarkAccrued is a compare-and-set on last_yield_date, a concurrent run
// that got there first leaves zero affected rows.
func (s *GormStore) MarkAccrued(ctx context.Context, investmentID int64, lastSeen, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("id = ? AND last_yield_date = ?", investmentID, lastSeen).
		Update("last_yield_date", now)
	if res.Error != nil {
		return false, logger.WrapError(res.Error, "")
	}

	return res.RowsAffected == 1, nil
}

func (s *GormStore) Deactivate(ctx context.Context, investmentID int64) error {
	err := s.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("id = ?", investmentID).
		Update("is_active", false).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func (s *GormStore) Get(ctx context.Context, planID int64) (*models.Plan, error) {
	plan, err := models.GetPlanByID(s.db.WithContext(ctx), planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, logger.WrapError(err, "")
	}

	return plan, nil
}

func (s *GormStore) Credit(ctx context.Context, userID int64, txType string, amount float64, description string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return models.ApplyBalanceChange(tx, userID, txType, amount, description)
	})
	if err != nil {
		if errors.Is(err, models.ErrUserGone) {
			return ErrNotFound
		}
		return logger.WrapError(err, "")
	}

	return nil
}

func (s *GormStore) Exists(ctx context.Context, investmentID int64) (bool, error) {
	return models.LoyaltyBonusExists(s.db.WithContext(ctx), investmentID)
}

func (s *GormStore) Create(ctx context.Context, bonus *models.LoyaltyBonus) error {
	if err := s.db.WithContext(ctx).Create(bonus).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func (s *GormStore) Record(ctx context.Context, run *models.AccrualRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}
