package service

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type planInput struct {
	Name              string  `json:"name" validate:"required,min=2,max=64"`
	MinimumInvestment float64 `json:"minimum_investment" validate:"required,gt=0"`
	DailyInterestRate float64 `json:"daily_interest_rate" validate:"required,gt=0,lt=1"`
	IsActive          *bool   `json:"is_active"`
}

func (i *planInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

func GetPlans(c *gin.Context) {
	plans, err := models.GetActivePlans()
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, plans)
}

func CreatePlan(c *gin.Context) {
	var input planInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	plan := models.Plan{
		Name:              input.Name,
		MinimumInvestment: input.MinimumInvestment,
		DailyInterestRate: input.DailyInterestRate,
		IsActive:          true,
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	if err := db.DB.Create(&plan).Error; err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(201, plan)
}

// UpdatePlan edits a plan in place. Investments reference plans by id, so
// a rate change here applies to all future accruals of existing
// investments under the plan.
func UpdatePlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid plan id"})
		return
	}

	var input planInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var plan models.Plan
	err = db.DB.First(&plan, planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "Plan not found"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	plan.Name = input.Name
	plan.MinimumInvestment = input.MinimumInvestment
	plan.DailyInterestRate = input.DailyInterestRate
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	if err := db.DB.Save(&plan).Error; err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, plan)
}
