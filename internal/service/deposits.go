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
)

type depositInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (i *depositInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

type processInput struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func (i *processInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

func GetDeposits(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	deposits, err := models.GetUserDeposits(userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, deposits)
}

// CreateDeposit records a deposit request. Money only moves when an admin
// approves it.
func CreateDeposit(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var input depositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	deposit := models.Deposit{
		UserID: userID,
		Amount: input.Amount,
		Status: models.DepositStatusPending,
	}
	if err := db.DB.Create(&deposit).Error; err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(201, deposit)
}

func GetPendingDeposits(c *gin.Context) {
	deposits, err := models.GetDepositsByStatus(models.DepositStatusPending)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, deposits)
}

// ProcessDeposit approves or rejects a pending deposit. Approval credits
// the user and appends the deposit ledger entry.
func ProcessDeposit(c *gin.Context) {
	depositID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid deposit id"})
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

	errNotPending := errors.New("deposit is not pending")
	errNotFound := errors.New("deposit not found")

	var deposit models.Deposit

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deposit, depositID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return logger.WrapError(err, "")
		}

		if deposit.Status != models.DepositStatusPending {
			return errNotPending
		}

		now := time.Now()
		deposit.ProcessedAt = &now

		if input.Action == "approve" {
			deposit.Status = models.DepositStatusApproved

			err := models.ApplyBalanceChange(tx, deposit.UserID, models.TransactionDeposit,
				deposit.Amount, fmt.Sprintf("Deposit #%d approved", deposit.ID))
			if err != nil {
				return logger.WrapError(err, "")
			}
		} else {
			deposit.Status = models.DepositStatusRejected
		}

		if err := tx.Save(&deposit).Error; err != nil {
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

	c.JSON(200, deposit)
}
