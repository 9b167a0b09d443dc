package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/hupe1980/wcpairing"
	"github.com/hupe1980/wcpairing/logging"
	"github.com/hupe1980/wcpairing/relay"
)

// version is overridable at link time:
//
//	go build -ldflags "-X main.version=1.1.0"
var version = "0.1.0" //nolint:gochecknoglobals

// Execute parses args, pairs with the given URI and blocks until ctx is
// done or the peer deletes the pairing.
func Execute(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wcpair", flag.ContinueOnError)

	var (
		configPath            string
		showVersion, showHelp bool
		override              Config
	)

	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&override.RelayURL, "relay", "r", "", "Relay websocket URL")
	fs.StringVarP(&override.ProjectID, "project-id", "p", "", "Relay project id")
	fs.StringVar(&override.Codec, "codec", "", "Frame codec: json or cbor")
	fs.StringVarP(&override.LogLevel, "log-level", "l", "", "off, error, warn, info or debug")
	fs.StringVar(&override.LogFormat, "log-format", "", "text or json")
	fs.BoolVar(&override.RecordAllLevels, "record-all", false, "Replay info/warn/error lines too")
	fs.DurationVarP(&override.Timeout, "timeout", "t", 0, "Handshake timeout")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "wcpair %s\n", version)
		return nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyOverrides(&cfg, override, fs)
	if fs.NArg() > 0 {
		cfg.URI = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return run(ctx, cfg, stdout)
}

func applyOverrides(cfg *Config, o Config, fs *flag.FlagSet) {
	if fs.Changed("relay") {
		cfg.RelayURL = o.RelayURL
	}
	if fs.Changed("project-id") {
		cfg.ProjectID = o.ProjectID
	}
	if fs.Changed("codec") {
		cfg.Codec = o.Codec
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = o.LogFormat
	}
	if fs.Changed("record-all") {
		cfg.RecordAllLevels = o.RecordAllLevels
	}
	if fs.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
}

func run(ctx context.Context, cfg Config, stdout io.Writer) error {
	level, _ := logging.ParseLoggingLevel(cfg.LogLevel)
	codec, _ := relay.CodecByName(cfg.Codec)

	// The console stream does the filtering; the structured logger only
	// renders what reaches it.
	structured := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelDebug,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	}).WithComponent("wcpair")

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	r, err := relay.Dial(dialCtx, cfg.RelayURL, func(o *relay.WebSocketOptions) {
		o.ProjectID = cfg.ProjectID
		o.Codec = codec
		o.Logger = structured.WithComponent("relay").WithContext("relay_url", cfg.RelayURL)
	})
	if err != nil {
		return err
	}
	defer r.Close()

	client := wcpairing.New(func(o *wcpairing.Options) {
		o.Relay = r
		o.LogSuffix = cfg.LogSuffix
		o.LoggingLevel = level
		o.LogSink = logging.LoggerSink{Logger: structured}
		o.RecordAllLevels = cfg.RecordAllLevels
		o.ExpiryCheckInterval = cfg.ExpiryCheckInterval
	})
	defer client.Close()

	deletes := client.PairingDeletes()
	defer deletes.Close()

	pairCtx, cancelPair := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelPair()

	pairDone := structured.StartTimer("pair")
	if err := client.Pair(pairCtx, cfg.URI); err != nil {
		return err
	}
	pairDone()

	for _, p := range client.GetPairings() {
		name := ""
		if p.Metadata != nil {
			name = p.Metadata.Name
		}
		fmt.Fprintf(stdout, "paired %s %s expires %s\n", p.Topic, name, p.Expiry.Format(time.RFC3339))
	}

	select {
	case ev, ok := <-deletes.C():
		if ok {
			fmt.Fprintf(stdout, "peer deleted %s: %d %s\n", ev.Topic, ev.Code, ev.Message)
		}
		return nil
	case <-ctx.Done():
	}

	// Interrupted: tear our pairings down before leaving.
	byeCtx, cancelBye := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancelBye()

	for _, p := range client.GetPairings() {
		if err := client.Disconnect(byeCtx, p.Topic); err != nil {
			structured.WithTopic(p.Topic).Warn("disconnect failed", "error", err)
			continue
		}
		fmt.Fprintf(stdout, "disconnected %s\n", p.Topic)
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `wcpair – pairing client v%s

Usage:
  wcpair [options] <pairing-uri>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  wcpair -p $PROJECT_ID 'wc:7f6e...@2?relay-protocol=irn&symKey=587d...'
  wcpair -c wcpair.yaml -l debug 'wc:...'
`)
}
