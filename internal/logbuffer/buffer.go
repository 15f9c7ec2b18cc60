// Package logbuffer keeps the most recent zerolog entries in memory so the
// HTTP API can show them.
package logbuffer

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Error   string
}

// Buffer is a fixed-size ring of log entries. It is an io.Writer fed with
// zerolog's JSON output, one event per Write.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	count   int
}

func New(size int) *Buffer {
	if size <= 0 {
		size = 1
	}
	return &Buffer{entries: make([]Entry, size)}
}

func (b *Buffer) Write(p []byte) (int, error) {
	var event map[string]any
	if err := json.Unmarshal(p, &event); err != nil {
		// not a zerolog event, keep it as a raw message
		b.add(Entry{Time: time.Now(), Message: string(p)})
		return len(p), nil
	}

	entry := Entry{
		Level:   stringField(event, zerolog.LevelFieldName),
		Message: stringField(event, zerolog.MessageFieldName),
		Error:   stringField(event, zerolog.ErrorFieldName),
	}
	if ts, err := time.Parse(zerolog.TimeFieldFormat, stringField(event, zerolog.TimestampFieldName)); err == nil {
		entry.Time = ts
	} else {
		entry.Time = time.Now()
	}
	b.add(entry)
	return len(p), nil
}

func stringField(event map[string]any, name string) string {
	s, _ := event[name].(string)
	return s
}

func (b *Buffer) add(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	size := len(b.entries)
	b.entries[(b.start+b.count)%size] = entry
	if b.count < size {
		b.count++
	} else {
		b.start = (b.start + 1) % size
	}
}

// Entries returns up to limit of the newest entries with the given level
// (all levels when empty, no limit when limit <= 0), oldest first.
func (b *Buffer) Entries(level string, limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	size := len(b.entries)
	var out []Entry
	for i := b.count - 1; i >= 0; i-- {
		entry := b.entries[(b.start+i)%size]
		if level != "" && entry.Level != level {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
