package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory Transactor. WithinTx holds the store lock for the
// whole unit of work and restores a snapshot when fn fails.
type memStore struct {
	mu       sync.Mutex
	items    map[string]domain.InventoryItem
	rentals  map[int32]domain.RentalOrder
	lines    map[int32][]domain.RentalLineItem
	settings map[string]decimal.Decimal
	nextID   int32

	// failAddLine makes AddLine fail for the given item code.
	failAddLine string
	// onBegin runs under the lock at the start of every unit of work.
	onBegin func(s *memStore)
}

func newMemStore(items ...domain.InventoryItem) *memStore {
	s := &memStore{
		items:    make(map[string]domain.InventoryItem),
		rentals:  make(map[int32]domain.RentalOrder),
		lines:    make(map[int32][]domain.RentalLineItem),
		settings: make(map[string]decimal.Decimal),
	}
	for _, it := range items {
		s.items[it.Code] = it
	}
	return s
}

func (s *memStore) Inventory() repository.InventoryRepository { return &memInventory{st: s} }
func (s *memStore) Rentals() repository.RentalRepository { return &memRentals{st: s} }
func (s *memStore) Settings() repository.SettingsRepository { return &memSettings{st: s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onBegin != nil {
		s.onBegin(s)
	}
	snap := s.snapshot()
	if err := fn(ctx, &memTx{st: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	items   map[string]domain.InventoryItem
	rentals map[int32]domain.RentalOrder
	lines   map[int32][]domain.RentalLineItem
	nextID  int32
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		items:   make(map[string]domain.InventoryItem, len(s.items)),
		rentals: make(map[int32]domain.RentalOrder, len(s.rentals)),
		lines:   make(map[int32][]domain.RentalLineItem, len(s.lines)),
		nextID:  s.nextID,
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.rentals {
		snap.rentals[k] = v
	}
	for k, v := range s.lines {
		snap.lines[k] = append([]domain.RentalLineItem(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.items = snap.items
	s.rentals = snap.rentals
	s.lines = snap.lines
	s.nextID = snap.nextID
}

// item and rental read state for assertions.
func (s *memStore) item(code string) domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[code]
}

func (s *memStore) rental(id int32) domain.RentalOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rentals[id]
}

func (s *memStore) rentalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rentals)
}

// setDue moves a rental's due date, for driving lateness in tests.
func (s *memStore) setDue(id int32, due time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.rentals[id]
	r.DueDate = due
	s.rentals[id] = r
}

func (s *memStore) setState(id int32, state domain.RentalState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.rentals[id]
	r.State = state
	s.rentals[id] = r
}

func (s *memStore) setAvailable(code string, available int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[code]
	it.Available = available
	s.items[code] = it
}

type memTx struct {
	st *memStore
}

func (t *memTx) Inventory() repository.InventoryRepository {
	return &memInventory{st: t.st, inTx: true}
}

func (t *memTx) Rentals() repository.RentalRepository {
	return &memRentals{st: t.st, inTx: true}
}

func (t *memTx) Settings() repository.SettingsRepository {
	return &memSettings{st: t.st, inTx: true}
}

func (s *memStore) lockUnless(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memInventory struct {
	st   *memStore
	inTx bool
}

func (r *memInventory) GetByCode(ctx context.Context, code string) (*domain.InventoryItem, error) {
	defer r.st.lockUnless(r.inTx)()
	it, ok := r.st.items[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (r *memInventory) List(ctx context.Context, includeInactive bool) ([]domain.InventoryItem, error) {
	defer r.st.lockUnless(r.inTx)()
	var out []domain.InventoryItem
	for _, it := range r.st.items {
		if includeInactive || it.IsActive() {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memInventory) Reserve(ctx context.Context, code string, qty int32) (bool, error) {
	defer r.st.lockUnless(r.inTx)()
	it, ok := r.st.items[code]
	if !ok || !it.IsActive() || it.Available < qty {
		return false, nil
	}
	it.Available -= qty
	r.st.items[code] = it
	return true, nil
}

func (r *memInventory) Release(ctx context.Context, code string, qty int32) (bool, error) {
	defer r.st.lockUnless(r.inTx)()
	it, ok := r.st.items[code]
	if !ok || it.Available+qty > it.TotalStock {
		return false, nil
	}
	it.Available += qty
	r.st.items[code] = it
	return true, nil
}

type memRentals struct {
	st   *memStore
	inTx bool
}

func (r *memRentals) Create(ctx context.Context, rental *domain.RentalOrder) error {
	defer r.st.lockUnless(r.inTx)()
	r.st.nextID++
	rental.ID = r.st.nextID
	stored := *rental
	stored.Lines = nil
	r.st.rentals[rental.ID] = stored
	return nil
}

func (r *memRentals) AddLine(ctx context.Context, line *domain.RentalLineItem) error {
	defer r.st.lockUnless(r.inTx)()
	if line.ItemCode == r.st.failAddLine {
		return errors.New("connection reset by peer")
	}
	r.st.lines[line.RentalID] = append(r.st.lines[line.RentalID], *line)
	return nil
}

func (r *memRentals) GetByID(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	defer r.st.lockUnless(r.inTx)()
	rt, ok := r.st.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}

func (r *memRentals) GetByIDForUpdate(ctx context.Context, id int32) (*domain.RentalOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memRentals) ListLines(ctx context.Context, rentalID int32) ([]domain.RentalLineItem, error) {
	defer r.st.lockUnless(r.inTx)()
	return append([]domain.RentalLineItem(nil), r.st.lines[rentalID]...), nil
}

func (r *memRentals) List(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalOrder, error) {
	defer r.st.lockUnless(r.inTx)()
	var out []domain.RentalOrder
	for _, rt := range r.st.rentals {
		if filter.CustomerID != 0 && rt.CustomerID != filter.CustomerID {
			continue
		}
		if len(filter.States) > 0 && !containsState(filter.States, rt.State) {
			continue
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRentals) CountByState(ctx context.Context, state domain.RentalState) (int32, error) {
	defer r.st.lockUnless(r.inTx)()
	var n int32
	for _, rt := range r.st.rentals {
		if rt.State == state {
			n++
		}
	}
	return n, nil
}

func (r *memRentals) MarkReturned(ctx context.Context, id int32, returnedDate time.Time, penalty decimal.Decimal, returnedBy int32) (bool, error) {
	defer r.st.lockUnless(r.inTx)()
	rt, ok := r.st.rentals[id]
	if !ok || !rt.State.Open() {
		return false, nil
	}
	rt.State = domain.RentalStateReturned
	rt.ReturnedDate = &returnedDate
	rt.Penalty = penalty
	rt.ReturnedBy = &returnedBy
	r.st.rentals[id] = rt
	return true, nil
}

func (r *memRentals) MarkOverdue(ctx context.Context, now time.Time) ([]int32, error) {
	defer r.st.lockUnless(r.inTx)()
	var ids []int32
	for id, rt := range r.st.rentals {
		if rt.State == domain.RentalStateActive && rt.DueDate.Before(now) {
			rt.State = domain.RentalStateOverdue
			r.st.rentals[id] = rt
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func containsState(states []domain.RentalState, s domain.RentalState) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

type memSettings struct {
	st   *memStore
	inTx bool
}

func (r *memSettings) GetDecimal(ctx context.Context, name string) (decimal.Decimal, error) {
	defer r.st.lockUnless(r.inTx)()
	v, ok := r.st.settings[name]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return v, nil
}

func (r *memSettings) SetDecimal(ctx context.Context, name string, value decimal.Decimal) error {
	defer r.st.lockUnless(r.inTx)()
	r.st.settings[name] = value
	return nil
}

// MockCustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) Exists(ctx context.Context, customerID int32) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}
func (m *MockCustomerDirectory) Find(ctx context.Context, customerID int32) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockActorDirectory
type MockActorDirectory struct {
	mock.Mock
}

func (m *MockActorDirectory) Exists(ctx context.Context, actorID int32) (bool, error) {
	args := m.Called(ctx, actorID)
	return args.Bool(0), args.Error(1)
}

// MockSettingsRepo
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) GetDecimal(ctx context.Context, name string) (decimal.Decimal, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockSettingsRepo) SetDecimal(ctx context.Context, name string, value decimal.Decimal) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func costume(code string, total, available int32, sale, rate string) domain.InventoryItem {
	return domain.InventoryItem{
		Code:                 code,
		Description:          code + " costume",
		TotalStock:           total,
		Available:            available,
		UnitSalePrice:        dec(sale),
		UnitRentalRatePerDay: dec(rate),
		Status:               domain.InventoryStatusActive,
	}
}
