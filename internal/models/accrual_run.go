package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"time"
)

// AccrualRun is the per-run summary of one accrual cycle.
type AccrualRun struct {
	ID                   int64 `gorm:"primaryKey,autoIncrement"`
	RunDate              time.Time
	InvestmentsProcessed int
	InvestmentsSkipped   int
	TotalYieldPaid       float64
	BonusesPaid          int
	CreatedAt            time.Time
}

func GetRecentAccrualRuns(limit int) ([]AccrualRun, error) {
	var runs []AccrualRun

	q := db.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return runs, nil
}
