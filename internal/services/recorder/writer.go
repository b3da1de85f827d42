package recorder

import (
	"log"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Writer wraps the async WriteAPI and tracks the last write error for the
// health endpoints, plus per-state ingest counters for debugging.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter starts the listener for the write API's async errors.
func NewWriter(w api.WriteAPI) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour), // "long ago" by default
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				ww.mu.Lock()
				ww.lastErr = time.Now()
				ww.mu.Unlock()
				log.Printf("recorder: influx write error: %v", err)
			}
		}
	}()
	return ww
}

// LastErrorAge returns how long ago the last write error happened.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// MarkIngest counts a stored record by its algorithm state.
func (w *Writer) MarkIngest(state string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.counts[state]++
	w.mu.Unlock()
}

// Count reads the ingest counter for one algorithm state.
func (w *Writer) Count(state string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[state]
	w.mu.RUnlock()
	return c
}
