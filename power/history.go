package power

import (
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHistorySize is how many presses the daemon remembers.
const DefaultHistorySize = 32

// Press describes one completed key-press sequence.
type Press struct {
	ID       string        `json:"id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// MarshalJSON reports the duration in milliseconds.
func (p Press) MarshalJSON() ([]byte, error) {
	type alias Press
	return json.Marshal(struct {
		alias
		DurationMs int64 `json:"durationMs"`
	}{alias(p), p.Duration.Milliseconds()})
}

// History keeps the most recent presses in memory. It is not persisted.
type History struct {
	cache *lru.Cache[string, Press]
}

func NewHistory(size int) (*History, error) {
	if size <= 0 {
		size = DefaultHistorySize
	}
	cache, err := lru.New[string, Press](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create press history: %w", err)
	}
	return &History{cache: cache}, nil
}

func (h *History) Add(p Press) {
	h.cache.Add(p.ID, p)
}

// Recent returns the remembered presses, oldest first.
func (h *History) Recent() []Press {
	return h.cache.Values()
}

func (h *History) Len() int {
	return h.cache.Len()
}
