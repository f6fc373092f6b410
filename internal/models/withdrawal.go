package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	WithdrawalStatusPending   = "Pending"
	WithdrawalStatusProcessed = "Processed"
	WithdrawalStatusRejected  = "Rejected"
)

type Withdrawal struct {
	ID          int64 `gorm:"primaryKey,autoIncrement"`
	UserID      int64 `gorm:"index;not null;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Amount      float64
	Status      string `gorm:"index"`
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func GetUserWithdrawals(userID int64) ([]Withdrawal, error) {
	var withdrawals []Withdrawal

	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return withdrawals, nil
}

// GetLatestUserWithdrawal returns the most recent withdrawal for the user,
// or nil when the user has never withdrawn.
func GetLatestUserWithdrawal(tx *gorm.DB, userID int64) (*Withdrawal, error) {
	if tx == nil {
		tx = db.DB
	}

	var withdrawal Withdrawal
	err := tx.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&withdrawal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, logger.WrapError(err, "")
	}

	return &withdrawal, nil
}

func GetWithdrawalsByStatus(status string) ([]Withdrawal, error) {
	var withdrawals []Withdrawal

	err := db.DB.Where("status = ?", status).
		Order("created_at ASC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return withdrawals, nil
}
