package mapper

import (
	"encoding/json"
	"fmt"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/model"

	"gorm.io/datatypes"
)

type WorkflowActionMapper struct{}

func NewWorkflowActionMapper() *WorkflowActionMapper {
	return &WorkflowActionMapper{}
}

func (m *WorkflowActionMapper) ToEntity(a *model.WorkflowAction) (*entity.WorkflowAction, error) {
	if a == nil {
		return nil, nil
	}
	var snapshot []entity.SnapshotEntry
	if len(a.Snapshot) > 0 {
		if err := json.Unmarshal(a.Snapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot of action %s: %w", a.Id, err)
		}
	}
	return &entity.WorkflowAction{
		Id:                    a.Id,
		ActorId:               a.ActorId,
		ActionType:            entity.ActionType(a.ActionType),
		TargetDate:            a.TargetDate,
		TargetSubscriptionId:  a.TargetSubscriptionId,
		TargetScheduleId:      a.TargetScheduleId,
		Description:           a.Description,
		Snapshot:              snapshot,
		RowsAffected:          a.RowsAffected,
		SubscriptionsAffected: a.SubscriptionsAffected,
		Status:                entity.ActionStatus(a.Status),
		ExpiresAt:             a.ExpiresAt,
		UndoneAt:              a.UndoneAt,
		UndoneBy:              a.UndoneBy,
		CreatedAt:             a.CreatedAt,
	}, nil
}

func (m *WorkflowActionMapper) ToModel(a *entity.WorkflowAction) (*model.WorkflowAction, error) {
	if a == nil {
		return nil, nil
	}
	snapshot := a.Snapshot
	if snapshot == nil {
		snapshot = []entity.SnapshotEntry{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return &model.WorkflowAction{
		Id:                    a.Id,
		ActorId:               a.ActorId,
		ActionType:            string(a.ActionType),
		TargetDate:            a.TargetDate,
		TargetSubscriptionId:  a.TargetSubscriptionId,
		TargetScheduleId:      a.TargetScheduleId,
		Description:           a.Description,
		Snapshot:              datatypes.JSON(raw),
		RowsAffected:          a.RowsAffected,
		SubscriptionsAffected: a.SubscriptionsAffected,
		Status:                string(a.Status),
		ExpiresAt:             a.ExpiresAt,
		UndoneAt:              a.UndoneAt,
		UndoneBy:              a.UndoneBy,
		CreatedAt:             a.CreatedAt,
	}, nil
}
