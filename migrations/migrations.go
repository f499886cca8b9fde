// Package migrations carries the versioned SQL schema applied by goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// Open connects through the pgx database/sql driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	return db, nil
}

func prepare() error {
	goose.SetBaseFS(files)
	return goose.SetDialect("postgres")
}

// Up applies every pending migration.
func Up(db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// Down rolls back the most recent migration.
func Down(db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.Down(db, ".")
}

// Status logs the applied state of every migration.
func Status(db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.Status(db, ".")
}
