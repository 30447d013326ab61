package database

import (
	"fmt"
	"log"

	"mealbox-be/internal/model"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Subscription{},
		&model.DeliverySchedule{},
		&model.Order{},
		&model.WorkflowAction{},
	}
}

var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
}

var postMigrationSQL = []string{
	// Confirm-all scans only rows still waiting on the kitchen.
	`CREATE INDEX IF NOT EXISTS idx_schedule_confirmable
	 ON delivery_schedules (delivery_date)
	 WHERE line_status = 'scheduled' AND workflow_status = 'order received';`,

	// Undo-last looks up the newest pending action of one actor.
	`CREATE INDEX IF NOT EXISTS idx_workflow_actions_pending
	 ON workflow_actions (actor_id, created_at DESC)
	 WHERE status = 'pending';`,

	`DO $$ BEGIN
	   ALTER TABLE delivery_schedules ADD CONSTRAINT chk_schedule_line_status
	   CHECK (line_status IN ('scheduled', 'cancelled'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

	`DO $$ BEGIN
	   ALTER TABLE workflow_actions ADD CONSTRAINT chk_workflow_action_status
	   CHECK (status IN ('pending', 'undone', 'superseded'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
}

// Migrate brings the schema up to date. It is idempotent.
func Migrate(db *gorm.DB) error {
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post-migration: %w", err)
		}
	}
	return nil
}
