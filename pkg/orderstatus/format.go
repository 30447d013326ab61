package orderstatus

import "strings"

var derivedLabels = map[Derived]string{
	DerivedOrderReceived: "Order Received",
	DerivedInKitchen:     "In the Kitchen",
	DerivedDelivering:    "Out for Delivery",
	DerivedCompleted:     "Delivered",
	DerivedCancelled:     "Cancelled",
}

// Label is the customer-facing caption for a derived status.
func Label(d Derived) string {
	if l, ok := derivedLabels[d]; ok {
		return l
	}
	return "Unknown"
}

// Step returns the 1-based position on the order progress bar, 0 when the
// status has no position (cancelled or unknown).
func Step(d Derived) int {
	switch d {
	case DerivedOrderReceived:
		return 1
	case DerivedInKitchen:
		return 2
	case DerivedDelivering:
		return 3
	case DerivedCompleted:
		return 4
	}
	return 0
}

// StepCount is the number of positions on the progress bar.
const StepCount = 4

// WorkflowLabel title-cases a workflow status for the admin console.
func WorkflowLabel(w Workflow) string {
	words := strings.Fields(string(w))
	for i, word := range words {
		if word == "the" && i > 0 {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
