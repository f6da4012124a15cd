package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is one side-channel event for the host UI: edit/reorder/batch
// failures land here instead of aborting the view.
type Notice struct {
	ID      int       `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Log is a bounded in-memory ring of recent notices.
type Log struct {
	mu     sync.Mutex
	max    int
	nextID int
	items  []Notice
}

func NewLog(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max}
}

func (l *Log) Push(level Level, msg string) Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	n := Notice{ID: l.nextID, Level: level, Message: msg, At: time.Now()}
	l.items = append(l.items, n)
	if len(l.items) > l.max {
		l.items = l.items[len(l.items)-l.max:]
	}
	return n
}

// Recent returns up to n notices, newest last.
func (l *Log) Recent(n int) []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 || n > len(l.items) {
		n = len(l.items)
	}
	out := make([]Notice, n)
	copy(out, l.items[len(l.items)-n:])
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
