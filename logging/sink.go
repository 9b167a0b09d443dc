package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink is the console-equivalent output of a ConsoleLogger. Write must not
// fail loudly: a sink that cannot deliver drops the line.
type Sink interface {
	Write(level LoggingLevel, line string)
}

// WriterSink prints one line per call to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w (os.Stdout if nil).
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = os.Stdout
	}
	return &WriterSink{w: w}
}

// Write prints line followed by a newline. Write errors are discarded.
func (s *WriterSink) Write(_ LoggingLevel, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, line)
}

// LoggerSink forwards console lines to a structured Logger at the matching
// severity.
type LoggerSink struct {
	Logger Logger
}

// Write dispatches on level.
func (s LoggerSink) Write(level LoggingLevel, line string) {
	if s.Logger == nil {
		return
	}
	switch level {
	case LevelDebug:
		s.Logger.Debug(line)
	case LevelInfo:
		s.Logger.Info(line)
	case LevelWarn:
		s.Logger.Warn(line)
	case LevelError:
		s.Logger.Error(line)
	}
}

// discardSink drops everything.
type discardSink struct{}

func (discardSink) Write(LoggingLevel, string) {}

// Discard is a Sink that drops every line.
var Discard Sink = discardSink{}
