package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampZeroPadded(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	date, tm := Timestamp(at)
	assert.Equal(t, "2024-03-05", date)
	assert.Equal(t, "07:08:09", tm)
}

func TestEventKey(t *testing.T) {
	meta := NewMeta(EventAppear, "cam1", 42)
	assert.Equal(t, TrackKey{Label: "cam1", TrackID: 42}, meta.Key())
	assert.Equal(t, EventAppear, meta.Kind())
	assert.NotEmpty(t, meta.Date)
	assert.NotEmpty(t, meta.Time)
}

func TestAppearEventJSON(t *testing.T) {
	zone := "entrance"
	ev := AppearEvent{
		EventMeta: EventMeta{
			Event:   EventAppear,
			Label:   "cam1",
			TrackID: 1,
			Date:    "2024-01-01",
			Time:    "09:00:00",
		},
		Class:      "person",
		Confidence: 0.9,
		BBox:       [4]int{1, 2, 3, 4},
		ZoneID:     &zone,
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "appear", got["event"])
	assert.Equal(t, "person", got["type"])
	assert.Equal(t, "entrance", got["zone_id"])

	// превью отсутствует, поля не сериализуются
	_, hasThumb := got["thumbnail"]
	assert.False(t, hasThumb)
	_, hasMime := got["mime"]
	assert.False(t, hasMime)
}
