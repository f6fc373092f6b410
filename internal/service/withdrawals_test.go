package service

import (
	"InvestxApi/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownRemaining(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

	t.Run("no previous withdrawal", func(t *testing.T) {
		assert.LessOrEqual(t, cooldownRemaining(nil, now), time.Duration(0))
	})

	t.Run("one day ago blocks", func(t *testing.T) {
		latest := &models.Withdrawal{CreatedAt: now.Add(-24 * time.Hour)}
		assert.Greater(t, cooldownRemaining(latest, now), time.Duration(0))
	})

	t.Run("just under two days blocks", func(t *testing.T) {
		latest := &models.Withdrawal{CreatedAt: now.Add(-48*time.Hour + time.Minute)}
		assert.Greater(t, cooldownRemaining(latest, now), time.Duration(0))
	})

	t.Run("exactly two days allows", func(t *testing.T) {
		latest := &models.Withdrawal{CreatedAt: now.Add(-48 * time.Hour)}
		assert.LessOrEqual(t, cooldownRemaining(latest, now), time.Duration(0))
	})

	t.Run("three days ago allows", func(t *testing.T) {
		latest := &models.Withdrawal{CreatedAt: now.Add(-72 * time.Hour)}
		assert.LessOrEqual(t, cooldownRemaining(latest, now), time.Duration(0))
	})
}

func TestWithdrawalInputValidation(t *testing.T) {
	assert.Error(t, (&withdrawalInput{}).Validate())
	assert.Error(t, (&withdrawalInput{Amount: -5}).Validate())
	assert.NoError(t, (&withdrawalInput{Amount: 100}).Validate())
}

func TestProcessInputValidation(t *testing.T) {
	assert.Error(t, (&processInput{}).Validate())
	assert.Error(t, (&processInput{Action: "maybe"}).Validate())
	assert.NoError(t, (&processInput{Action: "approve"}).Validate())
	assert.NoError(t, (&processInput{Action: "reject"}).Validate())
}
