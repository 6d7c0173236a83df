// Package config loads application configuration from environment
// variables.  main loads a .env file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime settings.  Concern-specific settings
// (cache, rate limit, Redis, AMQP, logging) have their own loaders.
type Config struct {
	Env          string // APP_ENV, e.g. dev or prod
	Port         string // APP_PORT
	DBUser       string
	DBPass       string // may be empty
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string
	AccessTTLMin int // ACCESS_TOKEN_TTL_MIN
	BcryptCost   int

	// LockWait bounds every lock wait of a reservation transaction: the
	// slot advisory lock and InnoDB row locks.
	LockWait time.Duration
	// StudentMaxCapacity is the largest room a student may book.
	StudentMaxCapacity int
	// AllowAdminRegistration lets /v1/auth/register create admins.  Off
	// by default; admins are then provisioned out of band.
	AllowAdminRegistration bool
	ShutdownTimeout        time.Duration
}

// Load reads the configuration and returns an error naming the first
// required variable that is missing or malformed.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:                l.must("APP_ENV"),
		Port:               l.must("APP_PORT"),
		DBUser:             l.must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             l.must("DB_HOST"),
		DBPort:             l.must("DB_PORT"),
		DBName:             l.must("DB_NAME"),
		JWTSecret:          l.must("JWT_SECRET"),
		AccessTTLMin:       l.mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:         l.mustInt("BCRYPT_COST"),
		LockWait:           envDur("LOCK_WAIT_TIMEOUT", 5*time.Second),
		StudentMaxCapacity: envInt("STUDENT_MAX_CAPACITY", 10),
		ShutdownTimeout:    envDur("SHUTDOWN_TIMEOUT", 10*time.Second),

		AllowAdminRegistration: envBool("ALLOW_ADMIN_REGISTRATION", false),
	}
	if l.err != nil {
		return Config{}, l.err
	}
	if cfg.LockWait < time.Second {
		cfg.LockWait = time.Second
	}
	return cfg, nil
}

// loader remembers the first failure so Load can read every key in one
// struct literal.
type loader struct{ err error }

// must retrieves a required variable.  Unset and empty are both errors.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if (!ok || v == "") && l.err == nil {
		l.err = fmt.Errorf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must but also requires an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n
}
