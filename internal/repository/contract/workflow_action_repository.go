package contract

import (
	"context"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorkflowActionRepository interface {
	Create(ctx context.Context, action *entity.WorkflowAction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowAction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowAction, error)

	// SupersedePending retires the actor's pending entry so at most one stays
	// undoable per actor.
	SupersedePending(ctx context.Context, actorId string) (int64, error)
	MarkUndone(ctx context.Context, id uuid.UUID, undoneBy string, at time.Time) (int64, error)
}
