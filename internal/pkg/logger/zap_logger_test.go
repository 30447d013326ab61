package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_GetLogsFiltersAndOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewIsolatedLogger(path)

	l.Info("ORDER_WORKFLOW", "Confirmed orders", map[string]interface{}{"rowsUpdated": 40})
	l.Info("CUSTOMER", "Cancelled subscription", nil)
	l.Error("ORDER_WORKFLOW", "Undo failed", map[string]interface{}{"error": "conflict"})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs(LogFilter{Module: "ORDER_WORKFLOW"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Undo failed", all[0].Message, "newest first")
	assert.Equal(t, "Confirmed orders", all[1].Message)

	errorsOnly, err := l.GetLogs(LogFilter{Level: "ERROR"})
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)

	paged, err := l.GetLogs(LogFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "CUSTOMER", paged[0].Module)

	found, err := l.GetLogById(paged[0].Id)
	require.NoError(t, err)
	assert.Equal(t, paged[0].Message, found.Message)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("ANY", "ignored", nil)
	logs, err := l.GetLogs(LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
