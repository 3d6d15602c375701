package store

import (
	"sync"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
)

// Store holds the per-camera state shared between workers and the background
// tasks: latest annotated frame, latest per-bucket counts, last heartbeat and
// zone configuration. Every cell is keyed by camera label and overwritten
// last-write-wins; there are no multi-key transactions, so a reader may see a
// fresh frame next to counts from the previous tick.
type Store struct {
	mu         sync.RWMutex
	frames     map[string][]byte
	counts     map[string]models.CountSnapshot
	heartbeats map[string]time.Time
	zones      map[string][]models.Zone
}

// New creates an empty Store
func New() *Store {
	return &Store{
		frames:     make(map[string][]byte),
		counts:     make(map[string]models.CountSnapshot),
		heartbeats: make(map[string]time.Time),
		zones:      make(map[string][]models.Zone),
	}
}

// SetFrame replaces the latest encoded frame for a camera
func (s *Store) SetFrame(label string, jpeg []byte) {
	s.mu.Lock()
	s.frames[label] = jpeg
	s.mu.Unlock()
}

// Frame returns the latest encoded frame for a camera
func (s *Store) Frame(label string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.frames[label]
	return f, ok
}

// SetCounts replaces the camera's per-bucket counts for the current frame
func (s *Store) SetCounts(label string, counts models.CountSnapshot) {
	copied := make(models.CountSnapshot, len(counts))
	for k, v := range counts {
		copied[k] = v
	}
	s.mu.Lock()
	s.counts[label] = copied
	s.mu.Unlock()
}

// Counts returns a copy of the camera's latest counts
func (s *Store) Counts(label string) (models.CountSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counts[label]
	if !ok {
		return nil, false
	}
	copied := make(models.CountSnapshot, len(c))
	for k, v := range c {
		copied[k] = v
	}
	return copied, true
}

// AllCounts returns a copy of every camera's latest counts
func (s *Store) AllCounts() map[string]models.CountSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string]models.CountSnapshot, len(s.counts))
	for label, c := range s.counts {
		copied := make(models.CountSnapshot, len(c))
		for k, v := range c {
			copied[k] = v
		}
		all[label] = copied
	}
	return all
}

// Touch records a successful frame tick for the camera
func (s *Store) Touch(label string, at time.Time) {
	s.mu.Lock()
	s.heartbeats[label] = at
	s.mu.Unlock()
}

// LastSeen returns the camera's last heartbeat
func (s *Store) LastSeen(label string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.heartbeats[label]
	return t, ok
}

// SetZones replaces all zones for a camera
func (s *Store) SetZones(label string, zones []models.Zone) {
	copied := make([]models.Zone, len(zones))
	copy(copied, zones)
	s.mu.Lock()
	s.zones[label] = copied
	s.mu.Unlock()
}

// Zones returns the camera's configured zones; empty means no spatial filtering
func (s *Store) Zones(label string) []models.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z := s.zones[label]
	copied := make([]models.Zone, len(z))
	copy(copied, z)
	return copied
}

// DropCamera removes the camera's frame, counts and heartbeat.
// Zones survive a stop so a restarted camera keeps its configuration.
func (s *Store) DropCamera(label string) {
	s.mu.Lock()
	delete(s.frames, label)
	delete(s.counts, label)
	delete(s.heartbeats, label)
	s.mu.Unlock()
}

// Clear removes every camera's frame, counts and heartbeat
func (s *Store) Clear() {
	s.mu.Lock()
	s.frames = make(map[string][]byte)
	s.counts = make(map[string]models.CountSnapshot)
	s.heartbeats = make(map[string]time.Time)
	s.mu.Unlock()
}
