package contract

import (
	"context"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// UpdateWorkflowStatus only touches rows still in the from status and
	// returns how many changed.
	UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error)
	// MarkCancelled sets lifecycle and workflow status to cancelled together
	// with the audit fields.
	MarkCancelled(ctx context.Context, id uuid.UUID, stamp entity.CancellationStamp) (int64, error)
	RestoreState(ctx context.Context, id uuid.UUID, state entity.SubscriptionState) (int64, error)
}
