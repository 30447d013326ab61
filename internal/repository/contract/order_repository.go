package contract

import (
	"context"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error)
}
