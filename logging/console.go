package logging

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/wcpairing/pubsub"
)

const (
	warnMarker  = "⚠️"
	errorMarker = "‼️"
)

// ConsoleOptions configures a ConsoleLogger.
type ConsoleOptions struct {
	// Suffix tags every line produced by this logger instance.
	Suffix string
	// Level is the initial threshold. Defaults to LevelWarn.
	Level LoggingLevel
	// Sink receives every emitted line. Defaults to stdout.
	Sink Sink
	// Clock stamps debug lines. Defaults to time.Now.
	Clock func() time.Time
	// RecordAllLevels makes Info, Warn and Error lines enter the history
	// and trigger a Logs broadcast like Debug does. Off by default: only
	// debug lines are replayable.
	RecordAllLevels bool
	// Policy bounds how far a Logs subscriber may fall behind.
	Policy pubsub.Policy
}

// ConsoleLogger is the single diagnostic sink of a pairing client. It
// implements Logger. No method fails.
type ConsoleLogger struct {
	suffix    string
	level     atomic.Int32
	sink      Sink
	clock     func() time.Time
	recordAll bool

	mu      sync.Mutex
	history []string
	hub     *pubsub.Hub[[]string]
}

// NewConsoleLogger creates a ConsoleLogger with optional overrides.
func NewConsoleLogger(optFns ...func(o *ConsoleOptions)) *ConsoleLogger {
	opts := ConsoleOptions{
		Level:  LevelWarn,
		Clock:  time.Now,
		Policy: pubsub.Unbounded,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Sink == nil {
		opts.Sink = NewWriterSink(nil)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	l := &ConsoleLogger{
		suffix:    opts.Suffix,
		sink:      opts.Sink,
		clock:     opts.Clock,
		recordAll: opts.RecordAllLevels,
		hub: pubsub.NewHub[[]string](opts.Policy, func(o *pubsub.HubOptions[[]string]) {
			o.Clone = slices.Clone[[]string, string]
		}),
	}
	l.level.Store(int32(opts.Level))

	return l
}

// SetLogging replaces the threshold. Calls already past their level check
// are unaffected.
func (l *ConsoleLogger) SetLogging(level LoggingLevel) {
	l.level.Store(int32(level))
}

// Level returns the current threshold.
func (l *ConsoleLogger) Level() LoggingLevel {
	return LoggingLevel(l.level.Load())
}

// Logs subscribes to history snapshots. Every recorded line produces one
// snapshot holding the full history so far. Each subscriber owns the slices
// it receives.
func (l *ConsoleLogger) Logs() *pubsub.Subscription[[]string] {
	return l.hub.Subscribe()
}

// History returns a copy of the recorded lines.
func (l *ConsoleLogger) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.history...)
}

// Debug records the line, writes it to the sink and broadcasts the history.
func (l *ConsoleLogger) Debug(msg string, args ...any) {
	if !l.Level().Enabled(LevelDebug) {
		return
	}
	l.record(LevelDebug, msg, args)
}

// Info writes "<suffix> <msg>" to the sink.
func (l *ConsoleLogger) Info(msg string, args ...any) {
	if !l.Level().Enabled(LevelInfo) {
		return
	}
	l.emit(LevelInfo, msg, args)
}

// Warn writes "<suffix> ⚠️ <msg>" to the sink.
func (l *ConsoleLogger) Warn(msg string, args ...any) {
	if !l.Level().Enabled(LevelWarn) {
		return
	}
	l.emit(LevelWarn, warnMarker+" "+msg, args)
}

// Error writes "<suffix> ‼️ <msg>" to the sink.
func (l *ConsoleLogger) Error(msg string, args ...any) {
	if !l.Level().Enabled(LevelError) {
		return
	}
	l.emit(LevelError, errorMarker+" "+msg, args)
}

// Close ends every Logs subscription.
func (l *ConsoleLogger) Close() {
	l.hub.Close()
}

func (l *ConsoleLogger) emit(level LoggingLevel, msg string, args []any) {
	if l.recordAll {
		l.record(level, msg, args)
		return
	}
	l.sink.Write(level, l.suffix+" "+withFields(msg, args))
}

// record appends under the lock so history order matches call order and
// every subscriber sees snapshots in that same order.
func (l *ConsoleLogger) record(level LoggingLevel, msg string, args []any) {
	line := Record{Suffix: l.suffix, Message: msg, Timestamp: l.clock(), Fields: args}.Format()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, line)
	snapshot := append([]string(nil), l.history...)

	l.sink.Write(level, line)
	l.hub.Publish(snapshot)
}
