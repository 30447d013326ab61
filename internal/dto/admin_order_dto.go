package dto

import (
	"time"

	"github.com/google/uuid"
)

// Dates travel as YYYY-MM-DD calendar days in the operational timezone.
const DateLayout = "2006-01-02"

// --- Admin bulk transitions ---

type ConfirmAllRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type CancelOrderRequest struct {
	SubscriptionId string `json:"subscription_id" validate:"required,uuid"`
	Reason         string `json:"reason" validate:"required,max=500"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
}

type TransitionResponse struct {
	ActionId             uuid.UUID `json:"action_id"`
	ActionType           string    `json:"action_type"`
	Description          string    `json:"description"`
	RowsUpdated          int       `json:"rows_updated"`
	SubscriptionsUpdated int       `json:"subscriptions_updated"`
}

type UndoResponse struct {
	ActionId              uuid.UUID `json:"action_id"`
	ActionType            string    `json:"action_type"`
	Description           string    `json:"description"`
	RowsRestored          int       `json:"rows_restored"`
	SubscriptionsRestored int       `json:"subscriptions_restored"`
}

type WorkflowActionResponse struct {
	Id                    uuid.UUID  `json:"id"`
	ActorId               string     `json:"actor_id"`
	ActionType            string     `json:"action_type"`
	Description           string     `json:"description"`
	TargetDate            *string    `json:"target_date,omitempty"`
	RowsAffected          int        `json:"rows_affected"`
	SubscriptionsAffected int        `json:"subscriptions_affected"`
	Status                string     `json:"status"`
	Undoable              bool       `json:"undoable"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	UndoneAt              *time.Time `json:"undone_at,omitempty"`
	UndoneBy              *string    `json:"undone_by,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// --- Admin delivery console ---

type DeliveryRowResponse struct {
	ScheduleId           uuid.UUID  `json:"schedule_id"`
	SubscriptionId       uuid.UUID  `json:"subscription_id"`
	DeliveryDate         string     `json:"delivery_date"`
	Quantity             int        `json:"quantity"`
	LineStatus           string     `json:"line_status"`
	WorkflowStatus       string     `json:"workflow_status"`
	WorkflowLabel        string     `json:"workflow_label"`
	SubscriptionStatus   string     `json:"subscription_status"`
	SubscriptionWorkflow string     `json:"subscription_workflow"`
	CancelReason         *string    `json:"cancel_reason,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy          *string    `json:"cancelled_by,omitempty"`
}

type DeliveryListResponse struct {
	Date        string                `json:"date"`
	Total       int                   `json:"total"`
	Confirmable int                   `json:"confirmable"`
	Rows        []DeliveryRowResponse `json:"rows"`
}
