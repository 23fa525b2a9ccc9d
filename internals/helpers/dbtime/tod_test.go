package dbtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotations(t *testing.T) {
	for in, want := range map[string]string{
		"09:30":    "09:30",
		"9:30":     "09:30",
		"14:05:59": "14:05",
		"2:15 pm":  "14:15",
		"2:15PM":   "14:15",
		"12:00 AM": "00:00",
	} {
		tod, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, tod.Clock(), in)
	}

	_, err := Parse("25:00")
	assert.Error(t, err)
	_, err = Parse(" ")
	assert.Error(t, err)
}

func TestTodScan(t *testing.T) {
	//** Arrange
	var fromTime, fromBytes, fromString, fromNil Tod
	fromNil = From(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))

	//** Act
	require.NoError(t, fromTime.Scan(time.Date(2025, 4, 1, 13, 45, 10, 0, time.FixedZone("IST", 19800))))
	require.NoError(t, fromBytes.Scan([]byte("09:00")))
	require.NoError(t, fromString.Scan("16:30:00"))
	require.NoError(t, fromNil.Scan(nil))

	//** Assert
	assert.Equal(t, "13:45", fromTime.Clock())
	assert.Equal(t, "09:00", fromBytes.Clock())
	assert.Equal(t, "16:30", fromString.Clock())
	assert.True(t, fromNil.IsZero())
	assert.Error(t, new(Tod).Scan(42))
}

func TestTodValueIsComparableText(t *testing.T) {
	early, _ := Parse("9:05 AM")
	late, _ := Parse("10:00")

	ev, err := early.Value()
	require.NoError(t, err)
	lv, err := late.Value()
	require.NoError(t, err)

	assert.Equal(t, "09:05", ev)
	assert.Less(t, ev.(string), lv.(string))

	zero, err := Tod{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "00:00", zero)
}

func TestTodJSON(t *testing.T) {
	var payload struct {
		Start Tod `json:"start"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"start":"1:30 PM"}`), &payload))
	raw, err := json.Marshal(payload)

	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"13:30"}`, string(raw))
	assert.Error(t, json.Unmarshal([]byte(`{"start":930}`), &payload))
}
