package service

import (
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"

	"github.com/gin-gonic/gin"
)

func GetUserReferrals(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
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

	c.JSON(200, referrals)
}
