package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"
)

const (
	DepositStatusPending  = "Pending"
	DepositStatusApproved = "Approved"
	DepositStatusRejected = "Rejected"
)

type Deposit struct {
	ID          int64 `gorm:"primaryKey,autoIncrement"`
	UserID      int64 `gorm:"index;not null;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Amount      float64
	Status      string `gorm:"index"`
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func GetUserDeposits(userID int64) ([]Deposit, error) {
	var deposits []Deposit

	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&deposits).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return deposits, nil
}

func GetDepositsByStatus(status string) ([]Deposit, error) {
	var deposits []Deposit

	err := db.DB.Where("status = ?", status).
		Order("created_at ASC").
		Find(&deposits).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return deposits, nil
}
