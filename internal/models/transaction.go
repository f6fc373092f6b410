package models

import (
	"InvestxApi/cmd/db"
	"InvestxApi/pkg/logger"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	TransactionDeposit             = "deposit"
	TransactionWithdrawalRequest   = "withdrawal_request"
	TransactionWithdrawalProcessed = "withdrawal_processed"
	TransactionInvestment          = "investment"
	TransactionYield               = "yield"
	TransactionCommission          = "commission"
	TransactionBonus               = "bonus"
)

// ErrUserGone is returned when a balance change targets a user row
// that does not exist.
var ErrUserGone = errors.New("user row missing")

type Transaction struct {
	ID          int64  `gorm:"primaryKey,autoIncrement"`
	UserID      int64  `gorm:"index;not null;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type        string `gorm:"index"`
	Amount      float64
	Description string
	CreatedAt   time.Time
}

// ApplyBalanceChange credits (negative amount debits) a user's balance and
// appends the matching ledger entry in the same transaction, so the sum of
// a user's transactions always reconciles to the current balance.
func ApplyBalanceChange(tx *gorm.DB, userID int64, txType string, amount float64, description string) error {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Model(&User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return ErrUserGone
	}

	entry := Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

// AppendTransaction writes a ledger entry that does not move the balance,
// like the marker row for a processed withdrawal.
func AppendTransaction(tx *gorm.DB, userID int64, txType string, amount float64, description string) error {
	if tx == nil {
		tx = db.DB
	}

	entry := Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func GetUserTransactions(userID int64, limit int) ([]Transaction, error) {
	var transactions []Transaction

	q := db.DB.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return transactions, nil
}
