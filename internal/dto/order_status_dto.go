package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Customer order status ---

type DeliveryWindowsResponse struct {
	DeliveryDate  string    `json:"delivery_date"`
	Cutoff        time.Time `json:"cutoff"`
	CookingStart  time.Time `json:"cooking_start"`
	DeliveryStart time.Time `json:"delivery_start"`
	DeliveryEnd   time.Time `json:"delivery_end"`
}

type OrderStatusResponse struct {
	SubscriptionId   uuid.UUID                `json:"subscription_id"`
	Status           string                   `json:"status"`
	Label            string                   `json:"label"`
	Step             int                      `json:"step"`
	IsTerminal       bool                     `json:"is_terminal"`
	Source           string                   `json:"source"`
	NextDeliveryDate *string                  `json:"next_delivery_date"`
	Windows          *DeliveryWindowsResponse `json:"windows,omitempty"`
}

type CancellationEligibilityResponse struct {
	SubscriptionId uuid.UUID  `json:"subscription_id"`
	Allowed        bool       `json:"allowed"`
	BlockingDate   *string    `json:"blocking_date,omitempty"`
	Cutoff         *time.Time `json:"cutoff,omitempty"`
	Reason         string     `json:"reason"`
}

// --- Customer cancellation ---

type CustomerCancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CustomerCancelResponse struct {
	SubscriptionId     uuid.UUID `json:"subscription_id"`
	DeliveriesCanceled int       `json:"deliveries_cancelled"`
	CancelledAt        time.Time `json:"cancelled_at"`
}
