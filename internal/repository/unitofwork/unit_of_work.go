package unitofwork

import (
	"context"

	"mealbox-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository
	DeliveryScheduleRepository() contract.DeliveryScheduleRepository
	OrderRepository() contract.OrderRepository
	WorkflowActionRepository() contract.WorkflowActionRepository
}
