package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

// LoyaltyBonus marks the one-time 30-day bonus as paid for an investment.
// The row's existence is the guard against paying twice.
type LoyaltyBonus struct {
	ID           int64 `gorm:"primaryKey,autoIncrement"`
	UserID       int64 `gorm:"index;not null"`
	InvestmentID int64 `gorm:"uniqueIndex;not null"`
	Amount       float64
	CreatedAt    time.Time
}

func LoyaltyBonusExists(tx *gorm.DB, investmentID int64) (bool, error) {
	if tx == nil {
		tx = db.DB
	}

	var exists bool
	err := tx.Model(&LoyaltyBonus{}).
		Select("count(*) > 0").
		Where("investment_id = ?", investmentID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}
