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

type DeliveryScheduleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeliveryMapper
}

func NewDeliveryScheduleRepository(db *gorm.DB) contract.DeliveryScheduleRepository {
	return &DeliveryScheduleRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeliveryMapper(),
	}
}

func (r *DeliveryScheduleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DeliveryScheduleRepositoryImpl) Create(ctx context.Context, schedule *entity.DeliverySchedule) error {
	m := r.mapper.ScheduleToModel(schedule)
	if err := r.db.WithContext(ctx).Omit("Subscription").Create(m).Error; err != nil {
		return err
	}
	*schedule = *r.mapper.ScheduleToEntity(m)
	return nil
}

func (r *DeliveryScheduleRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DeliverySchedule, error) {
	var m model.DeliverySchedule
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DeliverySchedule{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ScheduleToEntity(&m), nil
}

func (r *DeliveryScheduleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DeliverySchedule, error) {
	var models []*model.DeliverySchedule
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DeliverySchedule{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DeliverySchedule, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ScheduleToEntity(m)
	}
	return entities, nil
}

func (r *DeliveryScheduleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DeliverySchedule{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DeliveryScheduleRepositoryImpl) UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.DeliverySchedule{}).
		Where("id IN ? AND workflow_status = ?", ids, string(from)).
		Update("workflow_status", string(to))
	return res.RowsAffected, res.Error
}

func (r *DeliveryScheduleRepositoryImpl) MarkCancelled(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.DeliverySchedule{}).
		Where("id IN ? AND workflow_status NOT IN ?", ids, orderstatus.TerminalWorkflows()).
		Updates(map[string]interface{}{
			"workflow_status": string(orderstatus.WorkflowCancelled),
			"cancel_reason":   stamp.Reason,
			"cancelled_at":    stamp.At,
			"cancelled_by":    stamp.By,
		})
	return res.RowsAffected, res.Error
}

func (r *DeliveryScheduleRepositoryImpl) CancelLines(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.DeliverySchedule{}).
		Where("id IN ? AND line_status = ?", ids, string(orderstatus.LineScheduled)).
		Updates(map[string]interface{}{
			"line_status":     string(orderstatus.LineCancelled),
			"workflow_status": string(orderstatus.WorkflowCancelled),
			"cancel_reason":   stamp.Reason,
			"cancelled_at":    stamp.At,
			"cancelled_by":    stamp.By,
		})
	return res.RowsAffected, res.Error
}

func (r *DeliveryScheduleRepositoryImpl) RestoreState(ctx context.Context, id uuid.UUID, state entity.ScheduleState) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.DeliverySchedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"workflow_status": string(state.WorkflowStatus),
			"cancel_reason":   state.CancelReason,
			"cancelled_at":    state.CancelledAt,
			"cancelled_by":    state.CancelledBy,
		})
	return res.RowsAffected, res.Error
}
