package specification

import (
	"time"

	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type BySubscriptionID struct {
	SubscriptionID uuid.UUID
}

func (s BySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

// ByDeliveryDate compares calendar dates; the clock part of Date is ignored.
type ByDeliveryDate struct {
	Date time.Time
}

func (s ByDeliveryDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("delivery_date = ?", s.Date.Format(dateLayout))
}

type DeliveryOnOrAfter struct {
	Date time.Time
}

func (s DeliveryOnOrAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("delivery_date >= ?", s.Date.Format(dateLayout))
}

type ByLineStatus struct {
	Status orderstatus.LineStatus
}

func (s ByLineStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("line_status = ?", string(s.Status))
}

type ByWorkflowStatus struct {
	Status orderstatus.Workflow
}

func (s ByWorkflowStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workflow_status = ?", string(s.Status))
}

// WorkflowNotTerminal skips completed and cancelled rows.
type WorkflowNotTerminal struct{}

func (s WorkflowNotTerminal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workflow_status NOT IN ?", orderstatus.TerminalWorkflows())
}

// ConfirmableOn selects the schedule rows confirm_all may move into the
// kitchen: scheduled and still "order received" on a date, belonging to an
// active subscription that is itself still "order received".
type ConfirmableOn struct {
	Date time.Time
}

func (s ConfirmableOn) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN subscriptions ON subscriptions.id = delivery_schedules.subscription_id").
		Where("delivery_schedules.delivery_date = ?", s.Date.Format(dateLayout)).
		Where("delivery_schedules.line_status = ?", string(orderstatus.LineScheduled)).
		Where("delivery_schedules.workflow_status = ?", string(orderstatus.WorkflowOrderReceived)).
		Where("subscriptions.lifecycle_status = ?", string(orderstatus.LifecycleActive)).
		Where("subscriptions.workflow_status = ?", string(orderstatus.WorkflowOrderReceived)).
		Order("delivery_schedules.id ASC")
}
