package pg

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/14ChannelBBS/Qua/internal/config"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *sql.DB
}

func New(cfg *config.Config) (*Storage, error) {
	log.Print("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Print("Succesfully connected to db")
	return &Storage{db}, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Public.Pg.Host, cfg.Public.Pg.Port, cfg.Public.Pg.User, cfg.Private.PgPassword, cfg.Public.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables when they are missing. Statements are
// idempotent, so running it on every startup is safe.
func (s *Storage) EnsureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// mapUniqueViolation converts a pq unique violation into ErrAlreadyExists so
// callers can retry or surface a conflict without importing pq.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return internal_errors.ErrAlreadyExists
	}
	return err
}
