package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsConfigSendsCookiesToAllowlistedOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://app.investx.example, https://admin.investx.example")

	config := corsConfigFromEnv()

	// session cookie only travels on credentialed requests, which in turn
	// require explicit origins instead of a wildcard
	assert.True(t, config.AllowCredentials)
	assert.False(t, config.AllowAllOrigins)
	assert.Equal(t,
		[]string{"https://app.investx.example", "https://admin.investx.example"},
		config.AllowOrigins)
}

func TestCorsConfigDefaultsToLocalFrontend(t *testing.T) {
	os.Unsetenv("CORS_ORIGINS")

	config := corsConfigFromEnv()

	assert.True(t, config.AllowCredentials)
	assert.Equal(t, []string{"http://localhost:3000"}, config.AllowOrigins)
}
