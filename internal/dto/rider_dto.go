package dto

// AdvanceDeliveryRequest takes the target workflow status in either stored
// ("in the kitchen") or snake_case ("in_the_kitchen") form.
type AdvanceDeliveryRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}
