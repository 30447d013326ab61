package entity

import (
	"time"

	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

// DeliverySchedule is one (subscription, delivery date) line. Rows are never
// deleted; cancellation is a status write.
type DeliverySchedule struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	DeliveryDate   time.Time
	Quantity       int
	LineStatus     orderstatus.LineStatus
	WorkflowStatus orderstatus.Workflow
	CancelReason   *string
	CancelledAt    *time.Time
	CancelledBy    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *DeliverySchedule) State() ScheduleState {
	return ScheduleState{
		WorkflowStatus: d.WorkflowStatus,
		CancelReason:   d.CancelReason,
		CancelledAt:    d.CancelledAt,
		CancelledBy:    d.CancelledBy,
	}
}

type ScheduleState struct {
	WorkflowStatus orderstatus.Workflow
	CancelReason   *string
	CancelledAt    *time.Time
	CancelledBy    *string
}

// Order is a row of the legacy real-time order path.
type Order struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	Status         orderstatus.OrderStatus
	KitchenStatus  string
	DeliveryDate   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
