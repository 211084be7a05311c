package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.InventoryRepository
	repository.RentalRepository
	repository.SettingsRepository
	repository.CustomerRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		InventoryRepository: NewInventoryRepository(db),
		RentalRepository:    NewRentalRepository(db),
		SettingsRepository:  NewSettingsRepository(db),
		CustomerRepository:  NewCustomerRepository(db),
		UserRepository:      NewUserRepository(db),
	}
}

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) (err error) {
	logger.DatabaseCall("BeginTx", "")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BeginTx", 0, err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newTxStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr, "cause", err)
		} else {
			logger.Debug("Transaction rolled back", "cause", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.DatabaseResult("Commit", 0, err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	inventory repository.InventoryRepository
	rentals   repository.RentalRepository
	settings  repository.SettingsRepository
}

func newTxStore(tx *sql.Tx) *txStore {
	return &txStore{
		inventory: NewInventoryRepository(tx),
		rentals:   NewRentalRepository(tx),
		settings:  NewSettingsRepository(tx),
	}
}

func (t *txStore) Inventory() repository.InventoryRepository { return t.inventory }
func (t *txStore) Rentals() repository.RentalRepository { return t.rentals }
func (t *txStore) Settings() repository.SettingsRepository { return t.settings }
