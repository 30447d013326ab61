package entity

import (
	"time"

	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionConfirmAll      ActionType = "confirm_all"
	ActionCancelOrder     ActionType = "cancel_order"
	ActionAdvanceDelivery ActionType = "advance_delivery"
)

type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionUndone     ActionStatus = "undone"
	ActionSuperseded ActionStatus = "superseded"
)

// WorkflowAction is one entry of the per-actor action log. Only a pending
// entry can be undone, and only once.
type WorkflowAction struct {
	Id                    uuid.UUID
	ActorId               string
	ActionType            ActionType
	TargetDate            *time.Time
	TargetSubscriptionId  *uuid.UUID
	TargetScheduleId      *uuid.UUID
	Description           string
	Snapshot              []SnapshotEntry
	RowsAffected          int
	SubscriptionsAffected int
	Status                ActionStatus
	ExpiresAt             *time.Time
	UndoneAt              *time.Time
	UndoneBy              *string
	CreatedAt             time.Time
}

func (a *WorkflowAction) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// SnapshotEntry is the prior state of one schedule row and its subscription.
// Applied* record what the action wrote so undo can detect later changes;
// an empty AppliedSubscriptionStatus means the subscription was left alone.
type SnapshotEntry struct {
	ScheduleId                      uuid.UUID             `json:"schedule_id"`
	PriorLineWorkflowStatus         orderstatus.Workflow  `json:"prior_line_workflow_status"`
	PriorLineCancelReason           *string               `json:"prior_line_cancel_reason"`
	PriorLineCancelledAt            *time.Time            `json:"prior_line_cancelled_at"`
	PriorLineCancelledBy            *string               `json:"prior_line_cancelled_by"`
	SubscriptionId                  uuid.UUID             `json:"subscription_id"`
	PriorSubscriptionWorkflowStatus orderstatus.Workflow  `json:"prior_subscription_workflow_status"`
	PriorLifecycleStatus            orderstatus.Lifecycle `json:"prior_lifecycle_status"`
	PriorCancellationReason         *string               `json:"prior_cancellation_reason"`
	PriorCancelledAt                *time.Time            `json:"prior_cancelled_at"`
	PriorCancelledBy                *string               `json:"prior_cancelled_by"`
	AppliedLineStatus               orderstatus.Workflow  `json:"applied_line_status"`
	AppliedSubscriptionStatus       orderstatus.Workflow  `json:"applied_subscription_status,omitempty"`
}

func (e SnapshotEntry) PriorScheduleState() ScheduleState {
	return ScheduleState{
		WorkflowStatus: e.PriorLineWorkflowStatus,
		CancelReason:   e.PriorLineCancelReason,
		CancelledAt:    e.PriorLineCancelledAt,
		CancelledBy:    e.PriorLineCancelledBy,
	}
}

func (e SnapshotEntry) PriorSubscriptionState() SubscriptionState {
	return SubscriptionState{
		LifecycleStatus:    e.PriorLifecycleStatus,
		WorkflowStatus:     e.PriorSubscriptionWorkflowStatus,
		CancellationReason: e.PriorCancellationReason,
		CancelledAt:        e.PriorCancelledAt,
		CancelledBy:        e.PriorCancelledBy,
	}
}
