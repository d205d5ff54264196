// Package diaglog keeps an append-only, size-bounded diagnostic log of
// translation-session events. Errors shown to the user transiently are also
// recorded here so they can be inspected after the notification is gone.
package diaglog

import (
	"log/slog"
	"sync"
	"time"
)

// Level classifies an entry.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Entry is one recorded event.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Log is a most-recent-N ring of entries. Appends never fail and never
// block; old entries fall off the front.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	logger   *slog.Logger
}

const defaultCapacity = 100

// New creates a log keeping the most recent capacity entries. Entries are
// mirrored to the structured logger.
func New(capacity int, logger *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{capacity: capacity, logger: logger}
}

// Info records an informational event.
func (l *Log) Info(msg string) {
	l.append(LevelInfo, msg)
	l.logger.Info(msg)
}

// Error records a user-visible error.
func (l *Log) Error(msg string) {
	l.append(LevelError, msg)
	l.logger.Error(msg)
}

func (l *Log) append(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Time: time.Now(), Level: level, Message: msg})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Recent returns a copy of the recorded entries, oldest first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
