package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":              "test",
		"APP_PORT":             "8080",
		"DB_USER":              "app",
		"DB_HOST":              "127.0.0.1",
		"DB_PORT":              "3306",
		"DB_NAME":              "rooms",
		"JWT_SECRET":           "secret",
		"ACCESS_TOKEN_TTL_MIN": "15",
		"BCRYPT_COST":          "10",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 5*time.Second, cfg.LockWait)
	assert.Equal(t, 10, cfg.StudentMaxCapacity)
	assert.Empty(t, cfg.DBPass)
}

func TestLoadMissingAndMalformed(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.EqualError(t, err, "missing required env var: JWT_SECRET")

	setRequired(t)
	t.Setenv("BCRYPT_COST", "ten")
	_, err = Load()
	require.EqualError(t, err, `invalid int for BCRYPT_COST: "ten"`)
}

func TestLockWaitHasFloor(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCK_WAIT_TIMEOUT", "200ms")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.LockWait)
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 5*time.Minute, c.TTL)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "Yes")
	t.Setenv("X_INT", "nope")
	assert.True(t, envBool("X_BOOL", false))
	assert.Equal(t, 3, envInt("X_INT", 3))
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, parseMethods(" get, head ,"))
}

func TestAMQPURLPrecedence(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://b")
	assert.Equal(t, "amqp://b", LoadAMQPConfig().URL)
	t.Setenv("RABBITMQ_URL", "amqp://a")
	assert.Equal(t, "amqp://a", LoadAMQPConfig().URL)
}
