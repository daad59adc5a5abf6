// Package notify carries transient user notices (connecting, loaded, failed).
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Level of a notice
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

// Notice is a single transient message for the presentation layer.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Notifier receives notices from the core.
type Notifier interface {
	Notify(n Notice)
}

// Console prints notices with emoji and color, the way every command prints status.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsole creates a console notifier writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prefix, title string
	switch n.Level {
	case Success:
		prefix, title = "✅", color.GreenString(n.Title)
	case Warning:
		prefix, title = "⚠️ ", color.YellowString(n.Title)
	case Error:
		prefix, title = "❌", color.RedString(n.Title)
	default:
		prefix, title = "🔄", color.CyanString(n.Title)
	}

	if n.Description != "" {
		fmt.Fprintf(c.out, "%s %s - %s\n", prefix, title, n.Description)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", prefix, title)
}

// Recorder keeps notices in memory. Used by tests and by callers that render later.
type Recorder struct {
	mu      sync.Mutex
	Notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, n)
}

// Count returns how many notices of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.Notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Notice) {}
