package mapper

import (
	"mealbox-be/internal/entity"
	"mealbox-be/internal/model"
	"mealbox-be/pkg/orderstatus"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		LifecycleStatus:    orderstatus.Lifecycle(s.LifecycleStatus),
		WorkflowStatus:     orderstatus.Workflow(s.WorkflowStatus),
		CancellationReason: s.CancellationReason,
		CancelledAt:        s.CancelledAt,
		CancelledBy:        s.CancelledBy,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		LifecycleStatus:    string(s.LifecycleStatus),
		WorkflowStatus:     string(s.WorkflowStatus),
		CancellationReason: s.CancellationReason,
		CancelledAt:        s.CancelledAt,
		CancelledBy:        s.CancelledBy,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
