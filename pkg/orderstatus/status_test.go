package orderstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromOrderStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   Derived
		wantOk bool
	}{
		{"pending", DerivedOrderReceived, true},
		{"confirmed", DerivedOrderReceived, true},
		{"preparing", DerivedInKitchen, true},
		{"ready", DerivedInKitchen, true},
		{"out_for_delivery", DerivedDelivering, true},
		{"delivered", DerivedCompleted, true},
		{"cancelled", DerivedCancelled, true},
		{" Delivered ", DerivedCompleted, true},
		{"refunded", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := FromOrderStatus(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWorkflow(t *testing.T) {
	w, ok := ParseWorkflow("in_the_kitchen")
	assert.True(t, ok)
	assert.Equal(t, WorkflowInKitchen, w)

	w, ok = ParseWorkflow("  Delivering ")
	assert.True(t, ok)
	assert.Equal(t, WorkflowDelivering, w)

	_, ok = ParseWorkflow("in_kitchen")
	assert.False(t, ok)
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, WorkflowCompleted.IsTerminal())
	assert.True(t, WorkflowCancelled.IsTerminal())
	assert.False(t, WorkflowDelivering.IsTerminal())

	assert.True(t, DerivedCancelled.IsTerminal())
	assert.False(t, DerivedInKitchen.IsTerminal())
}

func TestWorkflowAgreementCoversEveryState(t *testing.T) {
	for _, w := range Workflows {
		d, ok := Corresponding(w)
		assert.True(t, ok, "missing agreement for %q", w)
		assert.True(t, d.Valid())
	}
}

func TestAgrees(t *testing.T) {
	assert.True(t, Agrees(WorkflowCancelled, DerivedCancelled))
	assert.True(t, Agrees(WorkflowInKitchen, DerivedDelivering))
	assert.False(t, Agrees(WorkflowCancelled, DerivedCompleted))
	assert.False(t, Agrees(WorkflowOrderReceived, DerivedCancelled))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Out for Delivery", Label(DerivedDelivering))
	assert.Equal(t, "Unknown", Label(Derived("x")))
	assert.Equal(t, 3, Step(DerivedDelivering))
	assert.Equal(t, 0, Step(DerivedCancelled))
	assert.Equal(t, "In the Kitchen", WorkflowLabel(WorkflowInKitchen))
	assert.Equal(t, "Order Received", WorkflowLabel(WorkflowOrderReceived))
}
