package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(Options{User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "rooms", LockWait: 5 * time.Second})

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "rooms", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.ClientFoundRows)
	assert.Equal(t, time.UTC, cfg.Loc)
	assert.Equal(t, "5", cfg.Params["innodb_lock_wait_timeout"])
}

func TestDSNWithoutPasswordAndShortWait(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN(Options{User: "app", Host: "db", Port: "3306", Name: "rooms"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.Passwd)
	assert.Equal(t, "1", cfg.Params["innodb_lock_wait_timeout"])
}
