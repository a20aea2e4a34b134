package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCountersAndSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/requests", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/requests", "GET", 200, 7*time.Millisecond)
	m.RecordError("/requests/REQ001", "POST", "INVALID_TRANSITION")

	requests, errors := m.Snapshot()
	assert.Equal(t, int64(2), requests["/requests|GET|200"])
	assert.Equal(t, int64(1), errors["/requests/REQ001|POST|INVALID_TRANSITION"])

	// snapshot is a copy, not a view
	requests["/requests|GET|200"] = 99
	fresh, _ := m.Snapshot()
	assert.Equal(t, int64(2), fresh["/requests|GET|200"])
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	requests, errors := m.Snapshot()
	assert.Nil(t, requests)
	assert.Nil(t, errors)
}
