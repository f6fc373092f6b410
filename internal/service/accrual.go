package service

import (
	"InvestxApi/internal/accrual"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"

	"github.com/gin-gonic/gin"
)

const accrualRunsLimit = 30

// CalculateYields runs one accrual cycle on demand and returns its summary.
func CalculateYields(c *gin.Context, engine *accrual.Engine) {
	summary, err := engine.Run(c.Request.Context())
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, summary)
}

func GetAccrualRuns(c *gin.Context) {
	runs, err := models.GetRecentAccrualRuns(accrualRunsLimit)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, runs)
}
