package store

import (
	"testing"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	s := New()

	_, ok := s.Frame("cam1")
	assert.False(t, ok)

	s.SetFrame("cam1", []byte{0xff, 0xd8})
	frame, ok := s.Frame("cam1")
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8}, frame)
}

func TestCountsCopiedOnWriteAndRead(t *testing.T) {
	s := New()

	original := models.CountSnapshot{"people": 2}
	s.SetCounts("cam1", original)
	original["people"] = 99

	got, ok := s.Counts("cam1")
	require.True(t, ok)
	assert.Equal(t, 2, got["people"])

	got["people"] = 50
	again, _ := s.Counts("cam1")
	assert.Equal(t, 2, again["people"])
}

func TestAllCounts(t *testing.T) {
	s := New()
	s.SetCounts("cam1", models.CountSnapshot{"people": 1})
	s.SetCounts("cam2", models.CountSnapshot{"vehicles": 3})

	all := s.AllCounts()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all["cam1"]["people"])
	assert.Equal(t, 3, all["cam2"]["vehicles"])
}

func TestHeartbeat(t *testing.T) {
	s := New()

	_, ok := s.LastSeen("cam1")
	assert.False(t, ok)

	at := time.Now()
	s.Touch("cam1", at)
	got, ok := s.LastSeen("cam1")
	require.True(t, ok)
	assert.Equal(t, at, got)
}

func TestZonesSurviveDrop(t *testing.T) {
	s := New()
	s.SetZones("cam1", []models.Zone{{ID: "z1", Points: [][2]int{{0, 0}, {10, 0}, {10, 10}}}})
	s.SetFrame("cam1", []byte{1})
	s.SetCounts("cam1", models.CountSnapshot{"people": 1})
	s.Touch("cam1", time.Now())

	s.DropCamera("cam1")

	_, ok := s.Frame("cam1")
	assert.False(t, ok)
	_, ok = s.Counts("cam1")
	assert.False(t, ok)
	_, ok = s.LastSeen("cam1")
	assert.False(t, ok)

	// зоны остаются до перезапуска камеры
	zs := s.Zones("cam1")
	require.Len(t, zs, 1)
	assert.Equal(t, "z1", zs[0].ID)
}

func TestZonesReturnedAsCopy(t *testing.T) {
	s := New()
	s.SetZones("cam1", []models.Zone{{ID: "z1"}})

	zs := s.Zones("cam1")
	zs[0].ID = "mutated"

	assert.Equal(t, "z1", s.Zones("cam1")[0].ID)
}

func TestClear(t *testing.T) {
	s := New()
	s.SetFrame("cam1", []byte{1})
	s.SetCounts("cam2", models.CountSnapshot{"people": 1})
	s.Touch("cam3", time.Now())

	s.Clear()

	_, ok := s.Frame("cam1")
	assert.False(t, ok)
	assert.Empty(t, s.AllCounts())
	_, ok = s.LastSeen("cam3")
	assert.False(t, ok)
}
