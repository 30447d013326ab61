package orders

import "mealbox-be/pkg/orderstatus"

// forward lists the single next state of each non-terminal workflow status.
var forward = map[orderstatus.Workflow]orderstatus.Workflow{
	orderstatus.WorkflowOrderReceived: orderstatus.WorkflowInKitchen,
	orderstatus.WorkflowInKitchen:     orderstatus.WorkflowDelivering,
	orderstatus.WorkflowDelivering:    orderstatus.WorkflowCompleted,
}

// CanTransition reports whether a row in from may move to to. Any
// non-terminal state may be cancelled; otherwise only the next step forward
// is allowed. Terminal states never move.
func CanTransition(from, to orderstatus.Workflow) bool {
	if !from.Valid() || !to.Valid() || from.IsTerminal() {
		return false
	}
	if to == orderstatus.WorkflowCancelled {
		return true
	}
	return forward[from] == to
}

// Next returns the forward successor of from, if any.
func Next(from orderstatus.Workflow) (orderstatus.Workflow, bool) {
	to, ok := forward[from]
	return to, ok
}
