package service

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralCommissionRate is the one-time cut a referrer earns when their
// referred user creates an investment. It is paid synchronously in the
// investment transaction, never recomputed and never paid again.
const ReferralCommissionRate = 0.05

var (
	errInsufficientBalance = errors.New("insufficient balance")
	errPlanNotFound        = errors.New("plan not found")
	errPlanInactive        = errors.New("plan is not active")
	errBelowMinimum        = errors.New("amount is below the plan minimum")
)

// investStore is the slice of the ledger the invest flow needs, so the
// business rules can run against a fake the same way the accrual engine
// does.
type investStore interface {
	// GetPlan returns nil when the plan does not exist.
	GetPlan(planID int64) (*models.Plan, error)
	GetUserForUpdate(userID int64) (*models.User, error)
	CreateInvestment(investment *models.Investment) error
	ApplyBalanceChange(userID int64, txType string, amount float64, description string) error
	// ActiveReferralByReferred returns nil when the user was not referred.
	ActiveReferralByReferred(referredID int64) (*models.UserReferral, error)
	SaveReferral(referral *models.UserReferral) error
}

// gormInvestStore runs the invest flow inside one gorm transaction.
type gormInvestStore struct {
	tx *gorm.DB
}

func (s *gormInvestStore) GetPlan(planID int64) (*models.Plan, error) {
	plan, err := models.GetPlanByID(s.tx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, logger.WrapError(err, "")
	}

	return plan, nil
}

func (s *gormInvestStore) GetUserForUpdate(userID int64) (*models.User, error) {
	// Lock user row for update to prevent race conditions
	var user models.User
	if err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}

func (s *gormInvestStore) CreateInvestment(investment *models.Investment) error {
	if err := s.tx.Create(investment).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func (s *gormInvestStore) ApplyBalanceChange(userID int64, txType string, amount float64, description string) error {
	return models.ApplyBalanceChange(s.tx, userID, txType, amount, description)
}

func (s *gormInvestStore) ActiveReferralByReferred(referredID int64) (*models.UserReferral, error) {
	return models.GetActiveReferralByReferred(s.tx, referredID)
}

func (s *gormInvestStore) SaveReferral(referral *models.UserReferral) error {
	if err := s.tx.Save(referral).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

type investmentInput struct {
	PlanID int64   `json:"plan_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (i *investmentInput) Validate() error {
	validate = validator.New()
	return validate.Struct(i)
}

func GetInvestments(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
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

	c.JSON(200, investments)
}

func CreateInvestment(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var input investmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var investment models.Investment

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		investment, err = placeInvestment(&gormInvestStore{tx: tx}, userID, input.PlanID, input.Amount, time.Now())
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, errInsufficientBalance),
			errors.Is(err, errPlanNotFound),
			errors.Is(err, errPlanInactive),
			errors.Is(err, errBelowMinimum):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			logger.Error("%v", err)
			c.Status(500)
		}
		return
	}

	c.JSON(201, investment)
}

// placeInvestment holds the business rules of creating an investment:
// plan and balance checks, the debit with its ledger entry, and the
// synchronous referral commission.
func placeInvestment(store investStore, userID, planID int64, amount float64, now time.Time) (models.Investment, error) {
	plan, err := store.GetPlan(planID)
	if err != nil {
		return models.Investment{}, logger.WrapError(err, "")
	}
	if plan == nil {
		return models.Investment{}, errPlanNotFound
	}
	if !plan.IsActive {
		return models.Investment{}, errPlanInactive
	}
	if amount < plan.MinimumInvestment {
		return models.Investment{}, errBelowMinimum
	}

	user, err := store.GetUserForUpdate(userID)
	if err != nil {
		return models.Investment{}, logger.WrapError(err, "")
	}

	if user.Balance < amount {
		return models.Investment{}, errInsufficientBalance
	}

	err = store.ApplyBalanceChange(userID, models.TransactionInvestment,
		-amount, fmt.Sprintf("Investment in %s plan", plan.Name))
	if err != nil {
		return models.Investment{}, logger.WrapError(err, "")
	}

	investment := models.Investment{
		UserID:        userID,
		PlanID:        plan.ID,
		Amount:        amount,
		StartDate:     now,
		LastYieldDate: now,
		IsActive:      true,
	}
	if err := store.CreateInvestment(&investment); err != nil {
		return models.Investment{}, logger.WrapError(err, "")
	}

	if err := payReferralCommission(store, user, amount); err != nil {
		return models.Investment{}, logger.WrapError(err, "")
	}

	return investment, nil
}

// payReferralCommission credits the referrer 5% of the invested amount
// inside the same transaction that created the investment.
func payReferralCommission(store investStore, investor *models.User, amount float64) error {
	if investor.ReferredByID == nil {
		return nil
	}

	referral, err := store.ActiveReferralByReferred(investor.ID)
	if err != nil {
		return logger.WrapError(err, "")
	}
	if referral == nil {
		return nil
	}

	commission := amount * ReferralCommissionRate

	err = store.ApplyBalanceChange(referral.ReferrerID, models.TransactionCommission,
		commission, fmt.Sprintf("Referral commission from %s", investor.Nickname))
	if err != nil {
		return logger.WrapError(err, "")
	}

	referral.EarnedAmount += commission
	if err := store.SaveReferral(referral); err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}
