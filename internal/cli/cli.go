// Package cli is the gallery command line: it opens the chain from the config, makes
// sure the suite is deployed and wired, and runs calls, queries and tx scripts on it.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"okinoko_gallery/chain"
	"okinoko_gallery/internal/config"
	"okinoko_gallery/internal/event"
	"okinoko_gallery/internal/indexer"
	"okinoko_gallery/internal/logger"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

const programName = "gallery"

type globalFlags struct {
	configFile string
	envFile    string
	debug      bool
}

// Execute runs the root command against os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree. Every invocation gets its own flags.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Run the gallery contract suite on a local chain",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env", ".env", "path to .env file, ignored when missing")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags.configFile, flags.envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flags.debug {
			cfg.Logging.Level = "debug"
		}
		if err := logger.Initialize(cfg.Logging); err != nil {
			return err
		}
		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
			logger.Debug(fmt.Sprintf(format, v...), zap.String("component", programName))
		})); err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(
		deployCommand(),
		callCommand(),
		queryCommand(),
		scriptCommand(),
		eventsCommand(),
		metricsCommand(),
	)
	return rootCmd
}

// node is one opened chain with its bus, metrics registry and optional index.
type node struct {
	cfg      *config.Config
	registry *prometheus.Registry
	bus      *event.EventBus
	chain    *chain.Chain
	index    *indexer.Indexer
}

func openNode(ctx context.Context, cfg *config.Config) (*node, error) {
	l := logger.L()
	n := &node{cfg: cfg, registry: prometheus.NewRegistry()}
	n.bus = event.NewEventBus(n.registry, l)

	var store chain.Store
	if dir := cfg.ChainDir(); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		badgerStore, err := chain.NewBadgerStore(dir, l)
		if err != nil {
			return nil, err
		}
		store = badgerStore
	} else {
		memStore, err := chain.NewMemoryStore("")
		if err != nil {
			return nil, err
		}
		store = memStore
	}

	if cfg.Indexer.Driver != config.DriverNone {
		ix, err := indexer.Open(cfg.Indexer.Driver, cfg.Indexer.DSN, l)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		ix.Attach(n.bus)
		n.index = ix
	}

	c, err := chain.New(store,
		chain.WithKinds(suite.Kinds()),
		chain.WithEventBus(n.bus),
		chain.WithPromRegistry(n.registry),
		chain.WithLogger(l),
	)
	if err != nil {
		n.closeIndex()
		_ = store.Close()
		return nil, err
	}
	n.chain = c

	if !deployed(c) {
		if err := suite.Bootstrap(ctx, c, sdk.Address(cfg.Admin)); err != nil {
			_ = n.Close()
			return nil, err
		}
		logger.Info("suite bootstrapped", zap.String("admin", cfg.Admin))
	}
	return n, nil
}

func deployed(c *chain.Chain) bool {
	have := c.Deployments()
	for _, addr := range suite.Addresses() {
		if _, ok := have[addr]; !ok {
			return false
		}
	}
	return true
}

func (n *node) closeIndex() {
	if n.index == nil {
		return
	}
	if err := n.index.Close(); err != nil {
		logger.Warn("closing index", zap.Error(err))
	}
	n.index = nil
}

// Close flushes the index before the bus and the store go away.
func (n *node) Close() error {
	n.closeIndex()
	n.bus.Stop()
	if n.chain != nil {
		return n.chain.Close()
	}
	return nil
}

// withNode opens the node for one command run.
func withNode(cmd *cobra.Command, fn func(n *node) error) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return fmt.Errorf("no config found in context")
	}
	n, err := openNode(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(); err != nil {
			logger.Error("closing node", zap.Error(err))
		}
	}()
	return fn(n)
}

// contractAddress accepts "gallery" as well as "contract:gallery".
func contractAddress(name string) sdk.Address {
	if strings.Contains(name, ":") {
		return sdk.Address(name)
	}
	return sdk.Address("contract:" + name)
}
