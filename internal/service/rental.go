package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/repository"
	"costume-rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type rentalService struct {
	txr           repository.Transactor
	rentalRepo    repository.RentalRepository
	inventoryRepo repository.InventoryRepository
	customers     CustomerDirectory
	actors        ActorDirectory
	penalty       *PenaltyConfig
	maxDays       int32
	clock         func() time.Time
}

// NewRentalService builds the rental lifecycle engine. maxDays <= 0 disables
// the upper bound on the rental period.
func NewRentalService(
	txr repository.Transactor,
	rentalRepo repository.RentalRepository,
	inventoryRepo repository.InventoryRepository,
	customers CustomerDirectory,
	actors ActorDirectory,
	penalty *PenaltyConfig,
	maxDays int32,
) RentalService {
	return &rentalService{
		txr:           txr,
		rentalRepo:    rentalRepo,
		inventoryRepo: inventoryRepo,
		customers:     customers,
		actors:        actors,
		penalty:       penalty,
		maxDays:       maxDays,
		clock:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *rentalService) RegisterRental(ctx context.Context, customerID, clerkID int32, lines []domain.LineRequest, requestedDays int32) (*domain.RentalOrder, error) {
	log := logger.FromContext(ctx)

	if len(lines) == 0 {
		return nil, domain.Errorf(domain.ErrEmptyOrder, "rental must contain at least one item")
	}
	if requestedDays <= 0 {
		return nil, domain.Errorf(domain.ErrInvalidDays, "rental days must be greater than zero, got %d", requestedDays)
	}
	if s.maxDays > 0 && requestedDays > s.maxDays {
		return nil, domain.Errorf(domain.ErrInvalidDays, "maximum rental period is %d days, got %d", s.maxDays, requestedDays)
	}
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	if err := s.requireActor(ctx, clerkID); err != nil {
		return nil, err
	}

	// Validate every line before reserving any of them.
	priced := make([]utils.PricedLine, len(merged))
	for i, l := range merged {
		item, err := lookupAvailable(ctx, s.inventoryRepo, l.ItemCode, l.Quantity)
		if err != nil {
			return nil, err
		}
		if item.UnitRentalRatePerDay.IsNegative() || item.UnitSalePrice.IsNegative() {
			return nil, domain.Errorf(domain.ErrNegativePrice, "item %q has a negative catalog price", l.ItemCode)
		}
		priced[i] = utils.PricedLine{
			Quantity:      l.Quantity,
			RatePerDay:    item.UnitRentalRatePerDay,
			UnitSalePrice: item.UnitSalePrice,
		}
	}
	cost := utils.CalculateRentalCost(priced, requestedDays)

	start := s.clock()
	rental := &domain.RentalOrder{
		CustomerID:    customerID,
		ClerkID:       clerkID,
		StartDate:     start,
		DueDate:       utils.DueDate(start, requestedDays),
		RequestedDays: requestedDays,
		RentalTotal:   cost.RentalTotal,
		Deposit:       cost.Deposit,
		Penalty:       decimal.Zero,
		State:         domain.RentalStateActive,
	}

	err = s.txr.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Rentals().Create(ctx, rental); err != nil {
			return domain.PersistenceFailure("insert rental", err)
		}
		created := make([]domain.RentalLineItem, 0, len(merged))
		for i, l := range merged {
			line := domain.RentalLineItem{
				RentalID:             rental.ID,
				ItemCode:             l.ItemCode,
				Quantity:             l.Quantity,
				UnitRentalRatePerDay: priced[i].RatePerDay,
				Subtotal:             cost.Subtotals[i],
			}
			if err := uow.Rentals().AddLine(ctx, &line); err != nil {
				return domain.PersistenceFailure("insert rental line", err)
			}
			created = append(created, line)
		}
		for _, l := range merged {
			if err := reserveIn(ctx, uow.Inventory(), l.ItemCode, l.Quantity); err != nil {
				return err
			}
		}
		rental.Lines = created
		return nil
	})
	if err != nil {
		log.Warn("Rental registration rolled back", "customer_id", customerID, "error", err)
		return nil, domain.PersistenceFailure("register rental", err)
	}

	logger.WithRental(ctx, rental.ID).Info("Rental registered",
		"customer_id", customerID,
		"clerk_id", clerkID,
		"lines", len(rental.Lines),
		"rental_total", rental.RentalTotal.StringFixed(2),
		"deposit", rental.Deposit.StringFixed(2),
		"due_date", rental.DueDate.Format(time.DateOnly))
	return rental, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, rentalID, actorID int32) (*domain.Settlement, error) {
	if err := s.requireActor(ctx, actorID); err != nil {
		return nil, err
	}

	var settlement *domain.Settlement
	err := s.txr.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		rt, err := uow.Rentals().GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return rentalLookupError(rentalID, err)
		}
		if err := checkReturnable(rt); err != nil {
			return err
		}

		lines, err := uow.Rentals().ListLines(ctx, rentalID)
		if err != nil {
			return domain.PersistenceFailure("load rental lines", err)
		}
		for _, l := range lines {
			if err := releaseIn(ctx, uow.Inventory(), l.ItemCode, l.Quantity); err != nil {
				return err
			}
		}

		returnedAt := s.clock()
		daysLate := utils.DaysLate(rt.DueDate, returnedAt)
		penalty := utils.PenaltyFor(daysLate, s.penalty.PerDay())

		ok, err := uow.Rentals().MarkReturned(ctx, rt.ID, returnedAt, penalty, actorID)
		if err != nil {
			return domain.PersistenceFailure("mark rental returned", err)
		}
		if !ok {
			return domain.Errorf(domain.ErrInvalidState, "rental %d changed state during return", rentalID)
		}

		settlement = &domain.Settlement{
			RentalID:         rt.ID,
			ReturnedDate:     returnedAt,
			DaysLate:         daysLate,
			Penalty:          penalty,
			DepositReturned:  rt.Deposit,
			RentalTotal:      rt.RentalTotal,
			AdditionalCharge: penalty,
			Net:              utils.NetSettlement(rt.Deposit, penalty),
		}
		return nil
	})
	if err != nil {
		return nil, domain.PersistenceFailure("return rental", err)
	}

	logger.WithRental(ctx, rentalID).Info("Rental returned",
		"actor_id", actorID,
		"days_late", settlement.DaysLate,
		"penalty", settlement.Penalty.StringFixed(2),
		"deposit_returned", settlement.DepositReturned.StringFixed(2))
	return settlement, nil
}

func (s *rentalService) UpdatePenaltyRate(ctx context.Context, rate decimal.Decimal) error {
	return s.penalty.Update(ctx, rate)
}

func (s *rentalService) PenaltyRate() decimal.Decimal {
	return s.penalty.PerDay()
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.RentalOrder, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, rentalLookupError(rentalID, err)
	}
	lines, err := s.rentalRepo.ListLines(ctx, rentalID)
	if err != nil {
		return nil, domain.PersistenceFailure("load rental lines", err)
	}
	rt.Lines = lines
	return rt, nil
}

func (s *rentalService) ListRentals(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalOrder, error) {
	rentals, err := s.rentalRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.PersistenceFailure("list rentals", err)
	}
	return rentals, nil
}

func (s *rentalService) CountActive(ctx context.Context) (int32, error) {
	n, err := s.rentalRepo.CountByState(ctx, domain.RentalStateActive)
	if err != nil {
		return 0, domain.PersistenceFailure("count active rentals", err)
	}
	return n, nil
}

// EstimatePenalty computes what returning the rental at the given instant
// would cost. Nothing is written; the stored penalty stays zero until the
// rental is actually returned.
func (s *rentalService) EstimatePenalty(ctx context.Context, rentalID int32, at time.Time) (*domain.PenaltyEstimate, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, rentalLookupError(rentalID, err)
	}

	est := &domain.PenaltyEstimate{
		RentalID:      rt.ID,
		State:         rt.State,
		PenaltyPerDay: s.penalty.PerDay(),
		AsOf:          at,
	}
	if rt.State == domain.RentalStateReturned && rt.ReturnedDate != nil {
		est.AsOf = *rt.ReturnedDate
		est.DaysLate = utils.DaysLate(rt.DueDate, *rt.ReturnedDate)
		est.Penalty = rt.Penalty
		return est, nil
	}
	est.DaysLate = utils.DaysLate(rt.DueDate, at)
	est.Penalty = utils.PenaltyFor(est.DaysLate, est.PenaltyPerDay)
	return est, nil
}

func (s *rentalService) requireCustomer(ctx context.Context, customerID int32) error {
	ok, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return domain.PersistenceFailure("look up customer", err)
	}
	if !ok {
		return domain.Errorf(domain.ErrCustomerNotFound, "customer %d does not exist", customerID)
	}
	return nil
}

func (s *rentalService) requireActor(ctx context.Context, actorID int32) error {
	ok, err := s.actors.Exists(ctx, actorID)
	if err != nil {
		return domain.PersistenceFailure("look up actor", err)
	}
	if !ok {
		return domain.Errorf(domain.ErrActorNotFound, "user %d does not exist", actorID)
	}
	return nil
}

func checkReturnable(rt *domain.RentalOrder) error {
	switch rt.State {
	case domain.RentalStateActive, domain.RentalStateOverdue:
		return nil
	case domain.RentalStateReturned:
		return domain.Errorf(domain.ErrAlreadyReturned, "rental %d was already returned", rt.ID)
	default:
		return domain.Errorf(domain.ErrInvalidState, "rental %d has state %q and cannot be returned", rt.ID, rt.State)
	}
}

func rentalLookupError(rentalID int32, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Errorf(domain.ErrRentalNotFound, "rental %d does not exist", rentalID)
	}
	return domain.PersistenceFailure("load rental", err)
}

// mergeLines validates the requested lines and folds repeated item codes into
// one line, keeping first-seen order. Lines are stored one per item code.
func mergeLines(lines []domain.LineRequest) ([]domain.LineRequest, error) {
	merged := make([]domain.LineRequest, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, l := range lines {
		code := strings.TrimSpace(l.ItemCode)
		if code == "" {
			return nil, domain.Errorf(domain.ErrValidation, "line %d has no item code", i+1)
		}
		if l.Quantity <= 0 {
			return nil, domain.Errorf(domain.ErrInvalidQuantity, "quantity for item %q must be greater than zero, got %d", code, l.Quantity)
		}
		if j, ok := index[code]; ok {
			total := int64(merged[j].Quantity) + int64(l.Quantity)
			if total > math.MaxInt32 {
				return nil, domain.Errorf(domain.ErrInvalidQuantity, "combined quantity for item %q exceeds %d", code, int32(math.MaxInt32))
			}
			merged[j].Quantity = int32(total)
			continue
		}
		index[code] = len(merged)
		merged = append(merged, domain.LineRequest{ItemCode: code, Quantity: l.Quantity})
	}
	return merged, nil
}
