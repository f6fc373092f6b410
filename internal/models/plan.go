package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

type Plan struct {
	ID                int64  `gorm:"primaryKey,autoIncrement"`
	Name              string `gorm:"unique"`
	MinimumInvestment float64
	DailyInterestRate float64
	IsActive          bool
	CreatedAt         time.Time
}

func GetPlanByID(tx *gorm.DB, planID int64) (*Plan, error) {
	if tx == nil {
		tx = db.DB
	}

	var plan Plan
	if err := tx.First(&plan, planID).Error; err != nil {
		return nil, err
	}

	return &plan, nil
}

func GetActivePlans() ([]Plan, error) {
	var plans []Plan

	err := db.DB.Where("is_active = ?", true).
		Order("minimum_investment ASC").
		Find(&plans).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return plans, nil
}
