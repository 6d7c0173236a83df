package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Options are the connection settings taken from config.
type Options struct {
	User, Pass, Host, Port, Name string
	// LockWait is sent as the session's innodb_lock_wait_timeout so row
	// lock waits give up on the same schedule as the slot lock.
	LockWait time.Duration
}

// DSN builds the go-sql-driver DSN.
//
// parseTime=true maps DATETIME to time.Time and loc=UTC keeps it in UTC.
// clientFoundRows=true makes RowsAffected count matched rows, so an
// UPDATE that changes nothing still reports the row as found.
func DSN(o Options) string {
	auth := o.User
	if o.Pass != "" {
		auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
	}
	secs := int(o.LockWait / time.Second)
	if secs < 1 {
		secs = 1
	}
	params := url.Values{}
	params.Set("charset", "utf8mb4")
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	params.Set("clientFoundRows", "true")
	params.Set("innodb_lock_wait_timeout", fmt.Sprint(secs))
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", auth, o.Host, o.Port, o.Name, params.Encode())
}

// Open connects to MySQL and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(o))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
