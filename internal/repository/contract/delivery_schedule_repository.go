package contract

import (
	"context"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

type DeliveryScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.DeliverySchedule) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DeliverySchedule, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DeliverySchedule, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error)
	// MarkCancelled sets the workflow status of non-terminal rows to cancelled
	// and stamps the audit fields. The line status is left as is.
	MarkCancelled(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error)
	// CancelLines is the customer path: line and workflow status both become
	// cancelled.
	CancelLines(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error)
	RestoreState(ctx context.Context, id uuid.UUID, state entity.ScheduleState) (int64, error)
}
