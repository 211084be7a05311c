package service

import (
	"context"
	"errors"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"
)

type customerDirectory struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerDirectory(customerRepo repository.CustomerRepository) CustomerDirectory {
	return &customerDirectory{customerRepo: customerRepo}
}

func (d *customerDirectory) Exists(ctx context.Context, customerID int32) (bool, error) {
	return d.customerRepo.Exists(ctx, customerID)
}

func (d *customerDirectory) Find(ctx context.Context, customerID int32) (*domain.Customer, error) {
	c, err := d.customerRepo.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrCustomerNotFound, "customer %d does not exist", customerID)
	}
	if err != nil {
		return nil, domain.PersistenceFailure("load customer", err)
	}
	return c, nil
}

type actorDirectory struct {
	userRepo repository.UserRepository
}

func NewActorDirectory(userRepo repository.UserRepository) ActorDirectory {
	return &actorDirectory{userRepo: userRepo}
}

func (d *actorDirectory) Exists(ctx context.Context, actorID int32) (bool, error) {
	return d.userRepo.Exists(ctx, actorID)
}
