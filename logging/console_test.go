package logging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/wcpairing/pubsub"
)

type captureSink struct {
	mu     sync.Mutex
	lines  []string
	levels []LoggingLevel
}

func (s *captureSink) Write(level LoggingLevel, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	s.levels = append(s.levels, level)
}

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 13, 4, 5, 123456789, time.UTC)
}

func newTestConsole(level LoggingLevel, sink Sink) *ConsoleLogger {
	return NewConsoleLogger(func(o *ConsoleOptions) {
		o.Suffix = "[pairing]"
		o.Level = level
		o.Sink = sink
		o.Clock = fixedClock
	})
}

func nextSnapshot(t *testing.T, sub *pubsub.Subscription[[]string]) []string {
	t.Helper()
	select {
	case snap := <-sub.C():
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func assertQuiet(t *testing.T, sub *pubsub.Subscription[[]string]) {
	t.Helper()
	select {
	case snap := <-sub.C():
		t.Fatalf("unexpected broadcast: %v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecord_Format(t *testing.T) {
	r := Record{Suffix: "[wc]", Message: "hello", Timestamp: fixedClock()}
	assert.Equal(t, "[wc] hello - 13:04:05.1234", r.Format())

	r.Fields = []any{"topic", "abc", "n", 2}
	assert.Equal(t, "[wc] hello topic=abc n=2 - 13:04:05.1234", r.Format())
}

func TestConsoleLogger_DebugReplaysWholeHistory(t *testing.T) {
	sink := &captureSink{}
	l := newTestConsole(LevelDebug, sink)
	defer l.Close()

	sub := l.Logs()

	const n = 5
	for i := 0; i < n; i++ {
		l.Debug("step", "i", i)
	}

	prev := []string{}
	for k := 1; k <= n; k++ {
		snap := nextSnapshot(t, sub)
		require.Len(t, snap, k)
		assert.Equal(t, prev, snap[:k-1], "snapshot %d must extend snapshot %d", k, k-1)
		prev = snap
	}

	assert.Equal(t, prev, l.History())
	assert.Equal(t, "[pairing] step i=0 - 13:04:05.1234", prev[0])
	assert.Len(t, sink.Lines(), n)
}

func TestConsoleLogger_SubscribersOwnTheirSnapshots(t *testing.T) {
	l := newTestConsole(LevelDebug, &captureSink{})
	defer l.Close()

	a := l.Logs()
	b := l.Logs()

	l.Debug("first")

	snapA := nextSnapshot(t, a)
	snapA[0] = "tampered"

	snapB := nextSnapshot(t, b)
	assert.Equal(t, "[pairing] first - 13:04:05.1234", snapB[0])
	assert.Equal(t, snapB, l.History())
}

func TestConsoleLogger_HigherSeveritiesBypassHistory(t *testing.T) {
	sink := &captureSink{}
	l := newTestConsole(LevelDebug, sink)
	defer l.Close()

	sub := l.Logs()

	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assertQuiet(t, sub)
	assert.Empty(t, l.History())
	assert.Equal(t, []string{
		"[pairing] info",
		"[pairing] ⚠️ warn",
		"[pairing] ‼️ error",
	}, sink.Lines())
}

func TestConsoleLogger_ThresholdFiltering(t *testing.T) {
	tests := []struct {
		level LoggingLevel
		want  int
	}{
		{LevelOff, 0},
		{LevelError, 1},
		{LevelWarn, 2},
		{LevelInfo, 3},
		{LevelDebug, 4},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			sink := &captureSink{}
			l := newTestConsole(tt.level, sink)
			defer l.Close()

			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			assert.Len(t, sink.Lines(), tt.want)
		})
	}
}

func TestConsoleLogger_SetLoggingWarnSuppressesDebug(t *testing.T) {
	sink := &captureSink{}
	l := newTestConsole(LevelDebug, sink)
	defer l.Close()

	sub := l.Logs()

	l.SetLogging(LevelWarn)
	assert.Equal(t, LevelWarn, l.Level())

	l.Debug("x")
	assertQuiet(t, sub)

	l.Error("y")
	assertQuiet(t, sub)

	assert.Equal(t, []string{"[pairing] ‼️ y"}, sink.Lines())
	assert.Empty(t, l.History())
}

func TestConsoleLogger_SetLoggingIsNotRetroactive(t *testing.T) {
	l := newTestConsole(LevelDebug, Discard)
	defer l.Close()

	l.Debug("kept")
	l.SetLogging(LevelOff)
	l.Debug("dropped")

	assert.Len(t, l.History(), 1)

	l.SetLogging(LevelDebug)
	l.Debug("kept again")
	assert.Len(t, l.History(), 2)
}

func TestConsoleLogger_RecordAllLevels(t *testing.T) {
	sink := &captureSink{}
	l := NewConsoleLogger(func(o *ConsoleOptions) {
		o.Suffix = "[pairing]"
		o.Level = LevelDebug
		o.Sink = sink
		o.Clock = fixedClock
		o.RecordAllLevels = true
	})
	defer l.Close()

	sub := l.Logs()
	l.Warn("careful")

	snap := nextSnapshot(t, sub)
	assert.Equal(t, []string{"[pairing] ⚠️ careful - 13:04:05.1234"}, snap)
	assert.Equal(t, snap, sink.Lines())
}

func TestConsoleLogger_ConcurrentDebugKeepsHistoryConsistent(t *testing.T) {
	l := newTestConsole(LevelDebug, Discard)
	defer l.Close()

	sub := l.Logs()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				l.Debug("msg")
			}
		}()
	}
	wg.Wait()

	for k := 1; k <= 200; k++ {
		require.Len(t, nextSnapshot(t, sub), k)
	}
}

func TestConsoleLogger_DefaultsToWarn(t *testing.T) {
	l := NewConsoleLogger(func(o *ConsoleOptions) { o.Sink = Discard })
	defer l.Close()

	assert.Equal(t, LevelWarn, l.Level())
}

func TestLoggerSink_Dispatch(t *testing.T) {
	rec := &recordingLogger{}
	s := LoggerSink{Logger: rec}

	s.Write(LevelDebug, "d")
	s.Write(LevelInfo, "i")
	s.Write(LevelWarn, "w")
	s.Write(LevelError, "e")
	s.Write(LevelOff, "ignored")

	assert.Equal(t, []string{"debug:d", "info:i", "warn:w", "error:e"}, rec.calls)
}

type recordingLogger struct{ calls []string }

func (r *recordingLogger) Debug(msg string, _ ...any) { r.calls = append(r.calls, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.calls = append(r.calls, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.calls = append(r.calls, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.calls = append(r.calls, "error:"+msg) }

// Interface compliance (compile-time assertions)
var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*StructuredLogger)(nil)
	_ Logger = NoOpLogger{}
	_ Sink   = (*WriterSink)(nil)
	_ Sink   = LoggerSink{}
)
