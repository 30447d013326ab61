package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)
	data, err := Encode(BaseEvent{
		Type:       TypeOrdersConfirmed,
		Data:       map[string]interface{}{"rows_updated": 40},
		OccurredAt: at,
	})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeOrdersConfirmed, got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))
	assert.EqualValues(t, 40, got.Payload()["rows_updated"])
}

func TestDecodeRejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
