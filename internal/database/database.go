package database

import (
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect establishes a connection to PostgreSQL. Credentials given
// separately override any embedded in the URL.
func Connect(dbURL, user, pass string, poolSize int) (*sqlx.DB, error) {
	dsn, err := buildDSN(dbURL, user, pass)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if poolSize <= 0 {
		poolSize = 25
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize / 5)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func buildDSN(dbURL, user, pass string) (string, error) {
	if user == "" {
		return dbURL, nil
	}
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	if pass != "" {
		parsed.User = url.UserPassword(user, pass)
	} else {
		parsed.User = url.User(user)
	}
	return parsed.String(), nil
}
