package logring

import (
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

const defaultCapacity = 256

// Entry is one captured log line.
type Entry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Ring is a logrus hook retaining the most recent entries in memory so
// they can be handed to companion applications for support.
type Ring struct {
	mtx      sync.Mutex
	entries  []Entry
	start    int
	length   int
	capacity int
}

// check Ring compliance to the hook interface during compile time
var _ logrus.Hook = (*Ring)(nil)

func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Ring{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

func (r *Ring) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (r *Ring) Fire(entry *logrus.Entry) error {
	var fields map[string]interface{}

	if len(entry.Data) > 0 {
		fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			fields[k] = v
		}
	}

	e := Entry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
		Fields:  fields,
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.length < r.capacity {
		r.entries[(r.start+r.length)%r.capacity] = e
		r.length++
	} else {
		r.entries[r.start] = e
		r.start = (r.start + 1) % r.capacity
	}

	return nil
}

// Len returns the number of retained entries.
func (r *Ring) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.length
}

// Collect returns up to count entries starting at offset, counted from
// the oldest retained entry. A count of zero returns everything from
// offset on.
func (r *Ring) Collect(offset, count int) []Entry {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if offset < 0 {
		offset = 0
	}

	if offset >= r.length {
		return nil
	}

	remaining := r.length - offset
	if count <= 0 || count > remaining {
		count = remaining
	}

	entries := make([]Entry, count)
	for i := 0; i < count; i++ {
		entries[i] = r.entries[(r.start+offset+i)%r.capacity]
	}

	return entries
}
