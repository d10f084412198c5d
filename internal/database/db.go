package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the users and contacts tables when they do not exist yet.
// It runs at startup so a fresh database is usable without manual setup.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                 BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email              VARCHAR(255)  NOT NULL UNIQUE,
			password_hash      VARCHAR(255)  NOT NULL,
			subscription       VARCHAR(16)   NOT NULL DEFAULT 'starter',
			session_token      TEXT          NULL,
			avatar_url         VARCHAR(512)  NOT NULL DEFAULT '',
			verified           BOOLEAN       NOT NULL DEFAULT FALSE,
			verification_token VARCHAR(64)   NULL,
			created_at         TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			owner_id   BIGINT UNSIGNED NOT NULL,
			name       VARCHAR(255) NOT NULL,
			email      VARCHAR(255) NOT NULL,
			phone      VARCHAR(64)  NOT NULL,
			favorite   BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_contacts_owner (owner_id),
			KEY idx_contacts_owner_favorite (owner_id, favorite),
			CONSTRAINT fk_contacts_owner FOREIGN KEY (owner_id) REFERENCES users (id)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
