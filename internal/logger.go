package perftop

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger is the diagnostic sink handed to every pipeline component.
// Nothing in the pipeline writes to stderr directly, the terminal belongs to the UI.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type stdLogger struct {
	l     *log.Logger
	debug bool
}

// NewLogger writes timestamped diagnostics to w.
// Debug messages are only written when PERFTOP_DEBUG is set.
func NewLogger(w io.Writer, prefix string) Logger {
	if prefix != "" && !strings.HasSuffix(prefix, " ") {
		prefix += " "
	}
	return &stdLogger{
		l:     log.New(w, prefix, log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix),
		debug: os.Getenv("PERFTOP_DEBUG") != "",
	}
}

func (s *stdLogger) Debug(format string, args ...any) {
	if s.debug {
		s.l.Printf("DEBUG: "+format, args...)
	}
}

func (s *stdLogger) Info(format string, args ...any) {
	s.l.Printf(format, args...)
}

func (s *stdLogger) Warn(format string, args ...any) {
	s.l.Printf("WARN: "+format, args...)
}

func (s *stdLogger) Error(format string, args ...any) {
	s.l.Printf("ERROR: "+format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// LogMessage is one captured diagnostic.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures diagnostics in memory so tests can assert on them.
// Widget loops log from their own goroutines, so access is guarded.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (b *BufferLogger) add(level, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (b *BufferLogger) Debug(format string, args ...any) { b.add("debug", format, args...) }
func (b *BufferLogger) Info(format string, args ...any)  { b.add("info", format, args...) }
func (b *BufferLogger) Warn(format string, args ...any)  { b.add("warn", format, args...) }
func (b *BufferLogger) Error(format string, args ...any) { b.add("error", format, args...) }

// Messages returns a copy of everything logged so far.
func (b *BufferLogger) Messages() []LogMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

// Contains reports whether any message contains substr.
func (b *BufferLogger) Contains(substr string) bool {
	for _, m := range b.Messages() {
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}
