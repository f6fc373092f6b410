package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

type Investment struct {
	ID            int64 `gorm:"primaryKey,autoIncrement"`
	UserID        int64 `gorm:"index;not null;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PlanID        int64 `gorm:"index;not null"`
	Amount        float64
	StartDate     time.Time
	LastYieldDate time.Time
	IsActive      bool
	CreatedAt     time.Time
}

func GetUserInvestments(userID int64) ([]Investment, error) {
	var investments []Investment

	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&investments).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return investments, nil
}

func GetActiveInvestments(tx *gorm.DB) ([]Investment, error) {
	if tx == nil {
		tx = db.DB
	}

	var investments []Investment
	if err := tx.Where("is_active = ?", true).Find(&investments).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return investments, nil
}
