// Package logging provides the logging interface and adapters used across
// the pairing client.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that every component accepts through its Options. This
// package includes:
//
//   - Logger interface for dependency injection
//   - StructuredLogger wrapping Go's structured logging (log/slog)
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ConsoleLogger, the diagnostic stream exposed by the pairing client
//
// ConsoleLogger keeps the behaviour clients of the pairing SDK depend on:
// only Debug lines enter the replayable history, and every Debug call
// publishes the whole history (not the delta) to Logs subscribers. Info,
// Warn and Error go to the sink only. Set ConsoleOptions.RecordAllLevels
// to record every emitted line instead.
//
// Usage:
//
//	console := logging.NewConsoleLogger(func(o *logging.ConsoleOptions) {
//		o.Suffix = "[pairing]"
//		o.Level = logging.LevelDebug
//	})
//	sub := console.Logs()
//	defer sub.Close()
package logging
