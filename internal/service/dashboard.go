package service

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dashboardTransactionsLimit = 20

type dashboardResponse struct {
	ID           int64                 `json:"id"`
	Nickname     string                `json:"nickname"`
	Balance      float64               `json:"balance"`
	Investments  []models.Investment   `json:"investments"`
	Transactions []models.Transaction  `json:"transactions"`
	Referrals    []models.UserReferral `json:"referrals"`
}

func GetDashboard(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var user models.User
	err = db.DB.First(&user, userID).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	investments, err := models.GetUserInvestments(userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	transactions, err := models.GetUserTransactions(userID, dashboardTransactionsLimit)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	referrals, err := models.GetReferrerReferrals(userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, dashboardResponse{
		ID:           user.ID,
		Nickname:     user.Nickname,
		Balance:      user.Balance,
		Investments:  investments,
		Transactions: transactions,
		Referrals:    referrals,
	})
}
