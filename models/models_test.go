package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecordPriceHelpers(t *testing.T) {
	record := &ProductRecord{URL: "https://shop.example.com/p/1"}
	assert.False(t, record.HasPrice())
	assert.Equal(t, 0.0, record.GetPrice())

	record.SetPrice(2499)
	assert.True(t, record.HasPrice())
	assert.Equal(t, 2499.0, record.GetPrice())

	// SetPrice must copy the value, not alias the caller's variable.
	v := 100.0
	record.SetPrice(v)
	v = 200.0
	assert.Equal(t, 100.0, record.GetPrice())
}

func TestTrackedURLMarshalNullPrice(t *testing.T) {
	u := &TrackedURL{ID: 1, URL: "https://shop.example.com/p/1", Currency: CurrencyINR}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["current_price"])
}

func TestTrackedURLMarshalValidPrice(t *testing.T) {
	u := &TrackedURL{
		ID:           2,
		URL:          "https://shop.example.com/p/2",
		CurrentPrice: sql.NullFloat64{Float64: 1299.5, Valid: true},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1299.5, decoded["current_price"])

	assert.True(t, u.HasPrice())
	assert.Equal(t, 1299.5, u.GetCurrentPrice())
}

func TestExtractTaskLifecycle(t *testing.T) {
	task := NewExtractTask(9)
	assert.Equal(t, TaskStatusQueued, task.Status)
	assert.True(t, task.IsActive())
	assert.False(t, task.IsCompleted())
	assert.Equal(t, 9, task.URLID)
	assert.NotEmpty(t, task.ID)

	task.Start()
	assert.Equal(t, TaskStatusProcessing, task.Status)
	assert.True(t, task.IsActive())
	require.NotNil(t, task.StartedAt)

	record := &ProductRecord{Title: "Done"}
	task.Complete(record)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.True(t, task.IsCompleted())
	assert.False(t, task.IsActive())
	assert.Same(t, record, task.Result)
	assert.GreaterOrEqual(t, task.Duration(), time.Duration(0))
}

func TestExtractTaskFail(t *testing.T) {
	task := NewExtractTask(3)
	task.Start()
	task.Fail("network unreachable")

	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.True(t, task.IsCompleted())
	assert.Equal(t, "network unreachable", task.Error)
	assert.Nil(t, task.Result)
}

func TestTaskIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewExtractTask(i).ID
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestDurationZeroWhenNeverStarted(t *testing.T) {
	task := NewExtractTask(1)
	assert.Equal(t, time.Duration(0), task.Duration())
}
