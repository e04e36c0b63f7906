package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "staffing.db", cfg.DataPath)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 5*time.Minute, cfg.LateThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("LATE_THRESHOLD_MINUTES", "15")

	cfg := Load()
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.LateThreshold)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("LATE_THRESHOLD_MINUTES", "not-a-number")
	assert.Equal(t, 5*time.Minute, Load().LateThreshold)

	t.Setenv("LATE_THRESHOLD_MINUTES", "-3")
	assert.Equal(t, 5*time.Minute, Load().LateThreshold)
}
