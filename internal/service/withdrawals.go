package service

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalCooldown is the minimum gap between two withdrawal requests
// of the same user.
const WithdrawalCooldown = 48 * time.Hour

type withdrawalInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (i *withdrawalInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

func GetWithdrawals(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	withdrawals, err := models.GetUserWithdrawals(userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, withdrawals)
}

// CreateWithdrawal debits the user immediately and leaves the withdrawal
// pending for admin processing. The 2-day cooldown and the balance check
// run inside the same transaction as the debit.
func CreateWithdrawal(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var input withdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	errCooldownNotElapsed := errors.New("previous withdrawal was less than 2 days ago")

	var withdrawal models.Withdrawal

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		latest, err := models.GetLatestUserWithdrawal(tx, userID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if cooldownRemaining(latest, time.Now()) > 0 {
			return errCooldownNotElapsed
		}

		// Lock user row for update to prevent race conditions
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if user.Balance < input.Amount {
			return errInsufficientBalance
		}

		withdrawal = models.Withdrawal{
			UserID: userID,
			Amount: input.Amount,
			Status: models.WithdrawalStatusPending,
		}
		if err := tx.Create(&withdrawal).Error; err != nil {
			return logger.WrapError(err, "")
		}

		err = models.ApplyBalanceChange(tx, userID, models.TransactionWithdrawalRequest,
			-input.Amount, fmt.Sprintf("Withdrawal request #%d", withdrawal.ID))
		if err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errInsufficientBalance), errors.Is(err, errCooldownNotElapsed):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	c.JSON(201, withdrawal)
}

// cooldownRemaining returns how much of the withdrawal cooldown is left,
// zero or negative when a new request is allowed.
func cooldownRemaining(latest *models.Withdrawal, now time.Time) time.Duration {
	if latest == nil {
		return 0
	}
	return WithdrawalCooldown - now.Sub(latest.CreatedAt)
}

func GetPendingWithdrawals(c *gin.Context) {
	withdrawals, err := models.GetWithdrawalsByStatus(models.WithdrawalStatusPending)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, withdrawals)
}

// ProcessWithdrawal marks a pending withdrawal processed, or rejects it
// and returns the debited amount to the user.
func ProcessWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid withdrawal id"})
		return
	}

	var input processInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	errNotPending := errors.New("withdrawal is not pending")
	errNotFound := errors.New("withdrawal not found")

	var withdrawal models.Withdrawal

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&withdrawal, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return logger.WrapError(err, "")
		}

		if withdrawal.Status != models.WithdrawalStatusPending {
			return errNotPending
		}

		now := time.Now()
		withdrawal.ProcessedAt = &now

		if input.Action == "approve" {
			withdrawal.Status = models.WithdrawalStatusProcessed

			// the debit already happened at request time, this row
			// only marks the payout in the ledger
			err := models.AppendTransaction(tx, withdrawal.UserID, models.TransactionWithdrawalProcessed,
				0, fmt.Sprintf("Withdrawal #%d processed", withdrawal.ID))
			if err != nil {
				return logger.WrapError(err, "")
			}
		} else {
			withdrawal.Status = models.WithdrawalStatusRejected

			err := models.ApplyBalanceChange(tx, withdrawal.UserID, models.TransactionWithdrawalProcessed,
				withdrawal.Amount, fmt.Sprintf("Withdrawal #%d rejected, amount returned", withdrawal.ID))
			if err != nil {
				return logger.WrapError(err, "")
			}
		}

		if err := tx.Save(&withdrawal).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			c.JSON(404, gin.H{"error": err.Error()})
		case errors.Is(err, errNotPending):
			c.JSON(409, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	c.JSON(200, withdrawal)
}
