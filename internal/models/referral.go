package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"errors"

	"gorm.io/gorm"
)

type UserReferral struct {
	ID               int64 `gorm:"primaryKey,autoIncrement"`
	ReferrerID       int64 `gorm:"index"`
	ReferredID       int64 `gorm:"index"`
	ReferredNickname string
	EarnedAmount     float64
	IsActive         bool
}

func GetReferrerReferrals(referrerID int64) ([]UserReferral, error) {
	var referrals []UserReferral

	err := db.DB.Find(&referrals, "referrer_id = ?", referrerID).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return referrals, nil
}

// GetActiveReferralByReferred returns the referral row the user was signed
// up under, or nil when the user was not referred.
func GetActiveReferralByReferred(tx *gorm.DB, referredID int64) (*UserReferral, error) {
	if tx == nil {
		tx = db.DB
	}

	var referral UserReferral
	err := tx.Where("referred_id = ? AND is_active = ?", referredID, true).
		First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, logger.WrapError(err, "")
	}

	return &referral, nil
}
