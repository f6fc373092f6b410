package main

import (
	"InvestxApi/cmd/db"
	"InvestxApi/internal/models"
	"InvestxApi/pkg/logger"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// dropTables()
	createTables()
	seedPlans()
	seedAdmin()

	logger.Info("Migrated.")
}

func dropTables() {
	err := db.DB.Migrator().DropTable(
		&models.User{},
		&models.Plan{},
		&models.Investment{},
		&models.Transaction{},
		&models.Deposit{},
		&models.Withdrawal{},
		&models.UserReferral{},
		&models.LoyaltyBonus{},
		&models.AccrualRun{},
	)
	if err != nil {
		logger.Fatal("%v", err)
	}
}

func createTables() {
	err := db.DB.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Investment{},
		&models.Transaction{},
		&models.Deposit{},
		&models.Withdrawal{},
		&models.UserReferral{},
		&models.LoyaltyBonus{},
		&models.AccrualRun{},
	)
	if err != nil {
		logger.Fatal("%v", err)
	}
}

func seedPlans() {
	plans := []models.Plan{
		{Name: "Starter", MinimumInvestment: 100, DailyInterestRate: 0.01, IsActive: true},
		{Name: "Silver", MinimumInvestment: 500, DailyInterestRate: 0.03, IsActive: true},
		{Name: "Gold", MinimumInvestment: 1000, DailyInterestRate: 0.05, IsActive: true},
		{Name: "Platinum", MinimumInvestment: 5000, DailyInterestRate: 0.10, IsActive: true},
	}

	for _, plan := range plans {
		var count int64
		if err := db.DB.Model(&models.Plan{}).Where("name = ?", plan.Name).Count(&count).Error; err != nil {
			logger.Fatal("%v", err)
		}
		if count > 0 {
			continue
		}

		if err := db.DB.Create(&plan).Error; err != nil {
			logger.Fatal("%v", err)
		}
	}
}

func seedAdmin() {
	password, ok := os.LookupEnv("ADMIN_PASSWORD")
	if !ok {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var count int64
	if err := db.DB.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		logger.Fatal("%v", err)
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("%v", err)
	}

	admin := models.User{
		Nickname: "admin",
		Password: string(hash),
		IsAdmin:  true,
	}
	if err := db.DB.Create(&admin).Error; err != nil {
		logger.Fatal("%v", err)
	}
}
