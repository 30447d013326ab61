// Package orderstatus holds the status vocabularies shared by the customer
// status page, the admin console and the rider dashboard.
//
// Two vocabularies coexist and are deliberately kept apart:
//
//   - Derived: the customer-facing status computed from the clock and the
//     delivery windows (see pkg/delivery).
//   - Workflow: the coarse status an operator sets explicitly (see
//     pkg/admin/orders).
//
// WorkflowAgreement documents where the two must line up.
package orderstatus

import "strings"

// Derived is the time-derived, customer-facing status.
type Derived string

const (
	DerivedOrderReceived Derived = "order_received"
	DerivedInKitchen     Derived = "in_kitchen"
	DerivedDelivering    Derived = "delivering"
	DerivedCompleted     Derived = "completed"
	DerivedCancelled     Derived = "cancelled"
)

func (d Derived) IsTerminal() bool {
	return d == DerivedCompleted || d == DerivedCancelled
}

func (d Derived) Valid() bool {
	switch d {
	case DerivedOrderReceived, DerivedInKitchen, DerivedDelivering, DerivedCompleted, DerivedCancelled:
		return true
	}
	return false
}

// Workflow is the administrator-controlled status stored on both
// subscriptions and delivery_schedules.
type Workflow string

const (
	WorkflowOrderReceived Workflow = "order received"
	WorkflowInKitchen     Workflow = "in the kitchen"
	WorkflowDelivering    Workflow = "delivering"
	WorkflowCompleted     Workflow = "completed"
	WorkflowCancelled     Workflow = "cancelled"
)

// Workflows lists the workflow states in progression order.
var Workflows = []Workflow{
	WorkflowOrderReceived,
	WorkflowInKitchen,
	WorkflowDelivering,
	WorkflowCompleted,
	WorkflowCancelled,
}

func (w Workflow) IsTerminal() bool {
	return w == WorkflowCompleted || w == WorkflowCancelled
}

func (w Workflow) Valid() bool {
	for _, s := range Workflows {
		if w == s {
			return true
		}
	}
	return false
}

// ParseWorkflow accepts the stored form ("in the kitchen") as well as the
// snake_case form used by API clients ("in_the_kitchen").
func ParseWorkflow(s string) (Workflow, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	w := Workflow(normalized)
	if !w.Valid() {
		return "", false
	}
	return w, true
}

// TerminalWorkflows is used by queries that must skip finished rows.
func TerminalWorkflows() []string {
	return []string{string(WorkflowCompleted), string(WorkflowCancelled)}
}

// OrderStatus is the status column of the legacy orders table.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

var orderToDerived = map[OrderStatus]Derived{
	OrderPending:        DerivedOrderReceived,
	OrderConfirmed:      DerivedOrderReceived,
	OrderPreparing:      DerivedInKitchen,
	OrderReady:          DerivedInKitchen,
	OrderOutForDelivery: DerivedDelivering,
	OrderDelivered:      DerivedCompleted,
	OrderCancelled:      DerivedCancelled,
}

// FromOrderStatus maps a legacy order status onto the derived vocabulary.
// ok is false for values outside the lookup table.
func FromOrderStatus(s string) (Derived, bool) {
	d, ok := orderToDerived[OrderStatus(strings.ToLower(strings.TrimSpace(s)))]
	return d, ok
}

// Lifecycle is the commercial state of a subscription.
type Lifecycle string

const (
	LifecycleActive    Lifecycle = "active"
	LifecyclePaused    Lifecycle = "paused"
	LifecycleCancelled Lifecycle = "cancelled"
	LifecycleExpired   Lifecycle = "expired"
)

// LineStatus is the scheduling state of a single delivery_schedules row.
type LineStatus string

const (
	LineScheduled LineStatus = "scheduled"
	LineCancelled LineStatus = "cancelled"
	LineSkipped   LineStatus = "skipped"
)

// WorkflowAgreement pairs every workflow state with the derived state it
// corresponds to. Only the cancelled pair is enforced at runtime; the other
// pairs are allowed to drift because the derived status follows the clock
// while the workflow status follows operator clicks.
var WorkflowAgreement = map[Workflow]Derived{
	WorkflowOrderReceived: DerivedOrderReceived,
	WorkflowInKitchen:     DerivedInKitchen,
	WorkflowDelivering:    DerivedDelivering,
	WorkflowCompleted:     DerivedCompleted,
	WorkflowCancelled:     DerivedCancelled,
}

// Corresponding returns the derived state paired with w.
func Corresponding(w Workflow) (Derived, bool) {
	d, ok := WorkflowAgreement[w]
	return d, ok
}

// Agrees reports whether a workflow and a derived status can be shown side by
// side: cancelled on one side requires cancelled on the other.
func Agrees(w Workflow, d Derived) bool {
	return (w == WorkflowCancelled) == (d == DerivedCancelled)
}
