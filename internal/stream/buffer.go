package stream

import (
	"github.com/google/uuid"

	"workorder_dashboard/internal/models"
)

// DefaultBufferSize caps the per-work-order log buffer. On overflow the
// oldest entries are evicted first.
const DefaultBufferSize = 500

// logBuffer is a fixed-capacity ring of LogEvent with head eviction.
// Not safe for concurrent use; the manager serializes access.
type logBuffer struct {
	capacity int
	items    []models.LogEvent
	start    int
	size     int
}

func newLogBuffer(capacity int) *logBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &logBuffer{
		capacity: capacity,
		items:    make([]models.LogEvent, capacity),
	}
}

// Append stores ev, evicting the oldest entry once the buffer is full.
// Events arriving without a server-side id get one here so consumers can
// key on it.
func (b *logBuffer) Append(ev models.LogEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}

	if b.size < b.capacity {
		idx := (b.start + b.size) % b.capacity
		b.items[idx] = ev
		b.size++
		return
	}

	b.items[b.start] = ev
	b.start = (b.start + 1) % b.capacity
}

// Snapshot returns the buffered events in insertion order.
func (b *logBuffer) Snapshot() []models.LogEvent {
	out := make([]models.LogEvent, 0, b.size)
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(b.start+i)%b.capacity])
	}
	return out
}

// Clear empties the buffer without reallocating.
func (b *logBuffer) Clear() {
	b.start = 0
	b.size = 0
}

func (b *logBuffer) Len() int { return b.size }
