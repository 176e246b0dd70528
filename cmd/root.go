// Package cmd wires up the CLI flags and drives one transport-core
// session: build a Config, a TCPTLSTransport, a scheduler, and a
// command handler, then run Configure/Dispatch/Deinit.
package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"rtcore/config"
	"rtcore/internal/cipher"
	"rtcore/internal/command"
	"rtcore/internal/metrics"
	"rtcore/internal/remote"
	"rtcore/internal/retry"
	"rtcore/internal/scheduler"
	"rtcore/internal/transport"
	"rtcore/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X rtcore/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs one transport session to completion.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Config{Timeouts: config.DefaultTimeouts()}
	config.LoadFromEnv(&cfg)

	fs := flag.NewFlagSet("rtcore", flag.ContinueOnError)

	fs.StringVarP(&cfg.URL, "url", "u", cfg.URL, `Transport URL, e.g. "tcp://192.0.2.1:4444" or "tcp://:4444" to bind`)
	fs.Int64Var(&cfg.Timeouts.Comms, "comms-timeout", cfg.Timeouts.Comms, "Idle timeout in seconds")
	fs.Int64Var(&cfg.Timeouts.RetryTotal, "retry-total", cfg.Timeouts.RetryTotal, "Connect retry window in seconds")
	fs.Int64Var(&cfg.Timeouts.RetryWait, "retry-wait", cfg.Timeouts.RetryWait, "Seconds between connect attempts")
	fs.Int64Var(&cfg.Timeouts.Expiry, "expiry", cfg.Timeouts.Expiry, "Hard session deadline in seconds from start")

	var cipherKeyHex string
	fs.StringVar(&cipherKeyHex, "cipher-key-hex", "", "Session cipher key, hex-encoded (prompted interactively if omitted)")

	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("rtcore %s\n", version)
		return nil
	}

	if cipherKeyHex != "" {
		key, err := hex.DecodeString(cipherKeyHex)
		if err != nil {
			return fmt.Errorf("cipher-key-hex: %w", err)
		}
		cfg.CipherKey = key
	} else if len(cfg.CipherKey) == 0 {
		key, err := config.PromptCipherKey()
		if err != nil {
			return err
		}
		cfg.CipherKey = key
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)

	r := remote.New()
	if len(cfg.CipherKey) > 0 {
		sessionCipher, err := cipher.NewContext(cfg.CipherKey, []byte("rtcore-session"))
		if err != nil {
			return fmt.Errorf("cipher: %w", err)
		}
		r.SetCipher(sessionCipher)
	}

	tr := transport.New(cfg.URL, cfg.Timeouts, logger, nil)
	stats := metrics.New()
	tr.SetMetrics(stats)
	r.SetTransport(tr)

	pool := scheduler.NewWorkerPool(4, 32, logger)

	// FixedRetry governs the raw reverse-connect attempts inside
	// Configure itself (spec §4.1's fixed-interval, deadline-bounded
	// budget); bind-listen is tried once per Configure. This outer
	// backoff covers a failed bind and Configure failing above that
	// layer (TLS negotiation, cover-request write), with a handful of
	// growing-interval retries before giving up entirely.
	bo := retry.DefaultBackoff()
	var configureErr error
	if err := bo.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			logger.Info("rtcore: session bring-up failed, retrying (attempt %d)", attempt)
		}
		configureErr = tr.Configure(ctx, r, 0)
		return configureErr
	}); err != nil {
		return fmt.Errorf("configure: %w", configureErr)
	}
	defer tr.Destroy(r)
	defer tr.Deinit(r)

	logger.Info("rtcore: session up, dispatching")
	dispatchErr := tr.Dispatch(ctx, r, command.Echo{Scheduler: pool}, pool)
	logger.Debug("rtcore: session stats: %s", stats.JSON())
	return dispatchErr
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `rtcore %s - transport core for a long-lived command channel

Usage:
  rtcore --url tcp://192.0.2.1:4444         Reverse connect
  rtcore --url tcp://:4444                  Bind and wait for one peer
  rtcore --url "tcp6://[fe80::1]:4444?3"    Reverse connect over IPv6 with a scope id

Options:
`, version)
	fs.PrintDefaults()
}
