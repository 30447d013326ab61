package entity

import (
	"time"

	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

// Subscription is one customer's meal plan. WorkflowStatus mirrors the
// workflow status of its delivery rows and is written in the same
// transaction as they are.
type Subscription struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	LifecycleStatus    orderstatus.Lifecycle
	WorkflowStatus     orderstatus.Workflow
	CancellationReason *string
	CancelledAt        *time.Time
	CancelledBy        *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *Subscription) IsCancelled() bool {
	return s.LifecycleStatus == orderstatus.LifecycleCancelled || s.WorkflowStatus == orderstatus.WorkflowCancelled
}

// State returns the restorable part of the row.
func (s *Subscription) State() SubscriptionState {
	return SubscriptionState{
		LifecycleStatus:    s.LifecycleStatus,
		WorkflowStatus:     s.WorkflowStatus,
		CancellationReason: s.CancellationReason,
		CancelledAt:        s.CancelledAt,
		CancelledBy:        s.CancelledBy,
	}
}

// SubscriptionState is written back verbatim by undo, NULLs included.
type SubscriptionState struct {
	LifecycleStatus    orderstatus.Lifecycle
	WorkflowStatus     orderstatus.Workflow
	CancellationReason *string
	CancelledAt        *time.Time
	CancelledBy        *string
}

// CancellationStamp carries the audit fields of a cancellation.
type CancellationStamp struct {
	Reason string
	At     time.Time
	By     string
}
