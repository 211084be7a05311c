package postgres

import (
	"context"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, username, name, active FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Name, &u.Active)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// Exists only counts active accounts; deactivated clerks cannot act on rentals.
func (r *userRepository) Exists(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND active)`, id).Scan(&exists)
	return exists, err
}
