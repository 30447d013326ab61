package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliverySchedule struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID  `gorm:"type:uuid;not null;index:idx_schedule_subscription_date"`
	DeliveryDate   time.Time  `gorm:"type:date;not null;index:idx_schedule_subscription_date;index"`
	Quantity       int        `gorm:"not null;default:1"`
	LineStatus     string     `gorm:"type:varchar(20);not null;default:'scheduled'"`
	WorkflowStatus string     `gorm:"type:varchar(32);not null;default:'order received';index"`
	CancelReason   *string    `gorm:"type:text"`
	CancelledAt    *time.Time `gorm:"type:timestamptz"`
	CancelledBy    *string    `gorm:"type:varchar(255)"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`

	Subscription Subscription `gorm:"foreignKey:SubscriptionId"`
}

func (DeliverySchedule) TableName() string {
	return "delivery_schedules"
}

type Order struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"type:varchar(32);not null;default:'pending'"`
	KitchenStatus  string    `gorm:"type:varchar(32)"`
	DeliveryDate   time.Time `gorm:"type:date;not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
