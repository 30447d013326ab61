package specification

import (
	"mealbox-be/internal/entity"

	"gorm.io/gorm"
)

type ByActorID struct {
	ActorID string
}

func (s ByActorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("actor_id = ?", s.ActorID)
}

type ByActionStatus struct {
	Status entity.ActionStatus
}

func (s ByActionStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}
