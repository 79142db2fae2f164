package stream

import (
	"strconv"
	"testing"

	"workorder_dashboard/internal/models"
)

func numberedEvent(n int) models.LogEvent {
	return models.LogEvent{
		EventID: strconv.Itoa(n),
		Level:   models.LevelInfo,
		Event:   "log_line",
		Output:  "line " + strconv.Itoa(n),
	}
}

func TestLogBuffer_CapAndOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		capacity  int
		appends   int
		wantLen   int
		wantFirst string
		wantLast  string
	}{
		{name: "below capacity keeps everything", capacity: 5, appends: 3, wantLen: 3, wantFirst: "0", wantLast: "2"},
		{name: "exactly at capacity", capacity: 5, appends: 5, wantLen: 5, wantFirst: "0", wantLast: "4"},
		{name: "overflow evicts oldest first", capacity: 5, appends: 12, wantLen: 5, wantFirst: "7", wantLast: "11"},
		{name: "default cap holds the last 500", capacity: 0, appends: 777, wantLen: 500, wantFirst: "277", wantLast: "776"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := newLogBuffer(tc.capacity)
			for i := 0; i < tc.appends; i++ {
				b.Append(numberedEvent(i))
			}

			got := b.Snapshot()
			if len(got) != tc.wantLen {
				t.Fatalf("len = %d; want %d", len(got), tc.wantLen)
			}
			if got[0].EventID != tc.wantFirst {
				t.Fatalf("first = %q; want %q", got[0].EventID, tc.wantFirst)
			}
			if got[len(got)-1].EventID != tc.wantLast {
				t.Fatalf("last = %q; want %q", got[len(got)-1].EventID, tc.wantLast)
			}

			// retained tail must be in original order
			for i := 1; i < len(got); i++ {
				prev, _ := strconv.Atoi(got[i-1].EventID)
				cur, _ := strconv.Atoi(got[i].EventID)
				if cur != prev+1 {
					t.Fatalf("order broken at %d: %q -> %q", i, got[i-1].EventID, got[i].EventID)
				}
			}
		})
	}
}

func TestLogBuffer_Clear(t *testing.T) {
	t.Parallel()

	b := newLogBuffer(4)
	for i := 0; i < 9; i++ {
		b.Append(numberedEvent(i))
	}
	b.Clear()
	if b.Len() != 0 || len(b.Snapshot()) != 0 {
		t.Fatalf("expected empty buffer after Clear, len=%d", b.Len())
	}

	// buffer is reusable after clearing
	b.Append(numberedEvent(42))
	got := b.Snapshot()
	if len(got) != 1 || got[0].EventID != "42" {
		t.Fatalf("unexpected contents after reuse: %+v", got)
	}
}

func TestLogBuffer_AssignsEventID(t *testing.T) {
	t.Parallel()

	b := newLogBuffer(2)
	b.Append(models.LogEvent{Event: "log_line"})
	got := b.Snapshot()
	if len(got) != 1 || got[0].EventID == "" {
		t.Fatalf("expected a locally assigned event id, got %+v", got)
	}

	b.Append(models.LogEvent{EventID: "server-7", Event: "log_line"})
	got = b.Snapshot()
	if got[1].EventID != "server-7" {
		t.Fatalf("server-assigned id must be kept, got %q", got[1].EventID)
	}
}
