package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/contract"
	"mealbox-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is an in-process stand-in for the Postgres schema. It implements
// unitofwork.RepositoryFactory so services can run against it in tests and in
// the offline CLI. Transactions are serialized: Begin takes a store wide lock
// that is held until Commit or Rollback, which gives the same outcome as row
// locks for the access patterns used here.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.Mutex
	data   *tables

	failMu   sync.Mutex
	failures map[string]error

	now func() time.Time
}

type tables struct {
	users         map[uuid.UUID]entity.User
	subscriptions map[uuid.UUID]entity.Subscription
	schedules     map[uuid.UUID]entity.DeliverySchedule
	orders        map[uuid.UUID]entity.Order
	actions       map[uuid.UUID]entity.WorkflowAction
}

func newTables() *tables {
	return &tables{
		users:         map[uuid.UUID]entity.User{},
		subscriptions: map[uuid.UUID]entity.Subscription{},
		schedules:     map[uuid.UUID]entity.DeliverySchedule{},
		orders:        map[uuid.UUID]entity.Order{},
		actions:       map[uuid.UUID]entity.WorkflowAction{},
	}
}

// clone copies every row. Pointer fields are shared since rows are only ever
// replaced, never mutated in place.
func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range t.schedules {
		c.schedules[k] = v
	}
	for k, v := range t.orders {
		c.orders[k] = v
	}
	for k, v := range t.actions {
		v.Snapshot = append([]entity.SnapshotEntry(nil), v.Snapshot...)
		c.actions[k] = v
	}
	return c
}

func NewStore() *Store {
	return &Store{
		data:     newTables(),
		failures: map[string]error{},
		now:      time.Now,
	}
}

// SetClock replaces the clock used for created_at and updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// FailOn makes every call of op return err until ClearFailures. Ops are named
// "<Repository>.<Method>", e.g. "WorkflowActionRepository.Create", or "Commit".
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[op] = err
}

func (s *Store) ClearFailures() {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures = map[string]error{}
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

// UnitOfWork mirrors the gorm unit of work: outside Begin every call
// autocommits, inside it all repositories share one working copy.
type UnitOfWork struct {
	store   *Store
	working *tables
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.working != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.store.failure("Begin"); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.store.dataMu.Lock()
	u.working = u.store.data.clone()
	u.store.dataMu.Unlock()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.working == nil {
		return fmt.Errorf("no transaction to commit")
	}
	if err := u.store.failure("Commit"); err != nil {
		u.working = nil
		u.store.txMu.Unlock()
		return err
	}
	u.store.dataMu.Lock()
	u.store.data = u.working
	u.store.dataMu.Unlock()
	u.working = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.working == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.working = nil
	u.store.txMu.Unlock()
	return nil
}

// exec runs fn against the working copy, or against the committed data when
// no transaction is open.
func (u *UnitOfWork) exec(op string, fn func(t *tables) error) error {
	if err := u.store.failure(op); err != nil {
		return err
	}
	if u.working != nil {
		return fn(u.working)
	}
	u.store.dataMu.Lock()
	defer u.store.dataMu.Unlock()
	return fn(u.store.data)
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{uow: u}
}

func (u *UnitOfWork) DeliveryScheduleRepository() contract.DeliveryScheduleRepository {
	return &deliveryScheduleRepository{uow: u}
}

func (u *UnitOfWork) OrderRepository() contract.OrderRepository {
	return &orderRepository{uow: u}
}

func (u *UnitOfWork) WorkflowActionRepository() contract.WorkflowActionRepository {
	return &workflowActionRepository{uow: u}
}
