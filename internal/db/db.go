// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// The original deployment created tables out of band; the Go port bootstraps
// them on connect so a fresh environment needs no separate migration step.
// The lower(email) index is what makes the unique-email invariant
// case-insensitive and atomic under concurrent submissions.
const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id SERIAL PRIMARY KEY,
    company VARCHAR(200) NOT NULL,
    email VARCHAR(120) NOT NULL,
    whatsapp VARCHAR(20),
    consent BOOLEAN NOT NULL DEFAULT TRUE,
    confirmed BOOLEAN NOT NULL DEFAULT FALSE,
    confirm_token VARCHAR(100)
);
CREATE UNIQUE INDEX IF NOT EXISTS subscribers_email_lower_idx ON subscribers (LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS subscribers_confirm_token_idx ON subscribers (confirm_token) WHERE confirm_token IS NOT NULL;
`

// DSN builds the connection string from DATABASE_URL or the DB_* variables.
func DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")

	log.Println("DB_USER:", user)
	log.Println("DB_NAME:", name)
	log.Println("DB_HOST:", host)

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, pass, host, port, name,
	)
}

// Connect opens the database, verifies the connection and ensures the schema.
func Connect() (*sql.DB, error) {
	conn, err := sql.Open("postgres", DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	if _, err = conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Println("✅ Connected to database")
	return conn, nil
}
