package mapper

import (
	"mealbox-be/internal/entity"
	"mealbox-be/internal/model"
	"mealbox-be/pkg/orderstatus"
)

type DeliveryMapper struct{}

func NewDeliveryMapper() *DeliveryMapper {
	return &DeliveryMapper{}
}

func (m *DeliveryMapper) ScheduleToEntity(d *model.DeliverySchedule) *entity.DeliverySchedule {
	if d == nil {
		return nil
	}
	return &entity.DeliverySchedule{
		Id:             d.Id,
		SubscriptionId: d.SubscriptionId,
		DeliveryDate:   d.DeliveryDate,
		Quantity:       d.Quantity,
		LineStatus:     orderstatus.LineStatus(d.LineStatus),
		WorkflowStatus: orderstatus.Workflow(d.WorkflowStatus),
		CancelReason:   d.CancelReason,
		CancelledAt:    d.CancelledAt,
		CancelledBy:    d.CancelledBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DeliveryMapper) ScheduleToModel(d *entity.DeliverySchedule) *model.DeliverySchedule {
	if d == nil {
		return nil
	}
	return &model.DeliverySchedule{
		Id:             d.Id,
		SubscriptionId: d.SubscriptionId,
		DeliveryDate:   d.DeliveryDate,
		Quantity:       d.Quantity,
		LineStatus:     string(d.LineStatus),
		WorkflowStatus: string(d.WorkflowStatus),
		CancelReason:   d.CancelReason,
		CancelledAt:    d.CancelledAt,
		CancelledBy:    d.CancelledBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DeliveryMapper) OrderToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}
	return &entity.Order{
		Id:             o.Id,
		SubscriptionId: o.SubscriptionId,
		Status:         orderstatus.OrderStatus(o.Status),
		KitchenStatus:  o.KitchenStatus,
		DeliveryDate:   o.DeliveryDate,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (m *DeliveryMapper) OrderToModel(o *entity.Order) *model.Order {
	if o == nil {
		return nil
	}
	return &model.Order{
		Id:             o.Id,
		SubscriptionId: o.SubscriptionId,
		Status:         string(o.Status),
		KitchenStatus:  o.KitchenStatus,
		DeliveryDate:   o.DeliveryDate,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
