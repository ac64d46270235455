package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		want  time.Time
		name  string
		input string
		valid bool
	}{
		{
			name:  "rfc3339 with millis",
			input: "2025-04-25T10:15:30.123Z",
			want:  time.Date(2025, 4, 25, 10, 15, 30, 123000000, time.UTC),
			valid: true,
		},
		{
			name:  "date only",
			input: "2025-04-25",
			want:  time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "epoch millis",
			input: "1745576130000",
			want:  time.UnixMilli(1745576130000).UTC(),
			valid: true,
		},
		{name: "empty", input: "", valid: false},
		{name: "garbage", input: "not-a-date", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTimestamp(tt.input)
			assert.Equal(t, tt.valid, ts.Valid)
			if tt.valid {
				assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
			}
		})
	}
}

func TestTimestampJSONIsLenient(t *testing.T) {
	var tx Transaction
	payload := `{
		"collect_id": "c1",
		"payment_time": "garbage",
		"createdAt": 1745576130000,
		"updatedAt": null,
		"order_amount": 1500,
		"transaction_amount": null
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &tx))

	assert.False(t, tx.PaymentTime.Valid)
	assert.True(t, tx.CreatedAt.Valid)
	assert.False(t, tx.UpdatedAt.Valid)
	assert.True(t, tx.OrderAmount.Valid)
	assert.False(t, tx.TransactionAmount.Valid)
	assert.True(t, tx.Amount().Valid, "falls back to the order amount")

	out, err := json.Marshal(tx.UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
