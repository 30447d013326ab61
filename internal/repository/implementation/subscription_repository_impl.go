package implementation

import (
	"context"
	"errors"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/mapper"
	"mealbox-be/internal/model"
	"mealbox-be/internal/repository/contract"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id IN ? AND workflow_status = ?", ids, string(from)).
		Update("workflow_status", string(to))
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepositoryImpl) MarkCancelled(ctx context.Context, id uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"lifecycle_status":    string(orderstatus.LifecycleCancelled),
			"workflow_status":     string(orderstatus.WorkflowCancelled),
			"cancellation_reason": stamp.Reason,
			"cancelled_at":        stamp.At,
			"cancelled_by":        stamp.By,
		})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepositoryImpl) RestoreState(ctx context.Context, id uuid.UUID, state entity.SubscriptionState) (int64, error) {
	// A map is used so nil pointers are written as NULL instead of skipped.
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"lifecycle_status":    string(state.LifecycleStatus),
			"workflow_status":     string(state.WorkflowStatus),
			"cancellation_reason": state.CancellationReason,
			"cancelled_at":        state.CancelledAt,
			"cancelled_by":        state.CancelledBy,
		})
	return res.RowsAffected, res.Error
}
