package implementation

import (
	"context"
	"errors"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/mapper"
	"mealbox-be/internal/model"
	"mealbox-be/internal/repository/contract"
	"mealbox-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkflowActionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowActionMapper
}

func NewWorkflowActionRepository(db *gorm.DB) contract.WorkflowActionRepository {
	return &WorkflowActionRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowActionMapper(),
	}
}

func (r *WorkflowActionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkflowActionRepositoryImpl) Create(ctx context.Context, action *entity.WorkflowAction) error {
	m, err := r.mapper.ToModel(action)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	created, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*action = *created
	return nil
}

func (r *WorkflowActionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowAction, error) {
	var m model.WorkflowAction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *WorkflowActionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowAction, error) {
	var models []*model.WorkflowAction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WorkflowAction, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *WorkflowActionRepositoryImpl) SupersedePending(ctx context.Context, actorId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.WorkflowAction{}).
		Where("actor_id = ? AND status = ?", actorId, string(entity.ActionPending)).
		Update("status", string(entity.ActionSuperseded))
	return res.RowsAffected, res.Error
}

func (r *WorkflowActionRepositoryImpl) MarkUndone(ctx context.Context, id uuid.UUID, undoneBy string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.WorkflowAction{}).
		Where("id = ? AND status = ?", id, string(entity.ActionPending)).
		Updates(map[string]interface{}{
			"status":    string(entity.ActionUndone),
			"undone_at": at,
			"undone_by": undoneBy,
		})
	return res.RowsAffected, res.Error
}
