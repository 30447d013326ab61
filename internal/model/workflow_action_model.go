package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkflowAction stores the pre-transition snapshot as jsonb so a single row
// is enough to reverse a bulk action.
type WorkflowAction struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActorId               string         `gorm:"type:varchar(255);not null;index:idx_workflow_actions_actor,priority:1"`
	ActionType            string         `gorm:"type:varchar(32);not null"`
	TargetDate            *time.Time     `gorm:"type:date"`
	TargetSubscriptionId  *uuid.UUID     `gorm:"type:uuid"`
	TargetScheduleId      *uuid.UUID     `gorm:"type:uuid"`
	Description           string         `gorm:"type:text"`
	Snapshot              datatypes.JSON `gorm:"type:jsonb;not null"`
	RowsAffected          int            `gorm:"not null;default:0"`
	SubscriptionsAffected int            `gorm:"not null;default:0"`
	Status                string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt             *time.Time     `gorm:"type:timestamptz"`
	UndoneAt              *time.Time     `gorm:"type:timestamptz"`
	UndoneBy              *string        `gorm:"type:varchar(255)"`
	CreatedAt             time.Time      `gorm:"autoCreateTime;index:idx_workflow_actions_actor,priority:2,sort:desc"`
}

func (WorkflowAction) TableName() string {
	return "workflow_actions"
}
