package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID  `gorm:"type:uuid;not null;index"`
	LifecycleStatus    string     `gorm:"type:varchar(20);not null;default:'active';index"`
	WorkflowStatus     string     `gorm:"type:varchar(32);not null;default:'order received';index"`
	CancellationReason *string    `gorm:"type:text"`
	CancelledAt        *time.Time `gorm:"type:timestamptz"`
	CancelledBy        *string    `gorm:"type:varchar(255)"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserId"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
