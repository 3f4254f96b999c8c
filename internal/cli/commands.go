package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"okinoko_gallery/chain"
	"okinoko_gallery/internal/logger"
	"okinoko_gallery/sdk"
)

var ErrNoIndex = errors.New("the indexer is disabled (indexer.driver: none)")

// parseTime reads unix seconds or a UTC timestamp. Empty means the chain clock.
func parseTime(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.Unix(), nil
		}
	}
	return 0, fmt.Errorf("bad time %q, want unix seconds or 2006-01-02T15:04:05", s)
}

func deployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy and wire the contract suite, then list the deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				return jsonLine(cmd.OutOrStdout(), func(w *jwriter.Writer) {
					writeDeployments(w, n.chain.Deployments(), n.chain.Methods)
				})
			})
		},
	}
}

type txFlags struct {
	sender string
	at     string
}

func (f *txFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.sender, "sender", "s", "", "calling account, defaults to the admin")
	cmd.Flags().StringVar(&f.at, "at", "", "block time (unix seconds or 2006-01-02T15:04:05 UTC)")
}

func (f *txFlags) tx(n *node, args []string) (chain.Tx, error) {
	ts, err := parseTime(f.at)
	if err != nil {
		return chain.Tx{}, err
	}
	sender := sdk.Address(f.sender)
	if sender == sdk.ZeroAddress {
		sender = sdk.Address(n.cfg.Admin)
	}
	tx := chain.Tx{
		Sender:    sender,
		Contract:  contractAddress(args[0]),
		Method:    args[1],
		Timestamp: ts,
	}
	if len(args) > 2 {
		tx.Payload = args[2]
	}
	return tx, nil
}

func callCommand() *cobra.Command {
	flags := &txFlags{}
	cmd := &cobra.Command{
		Use:     "call <contract> <method> [payload]",
		Short:   "Execute a transaction and print its receipt",
		Example: "  gallery call gallery create_gallery 'expo|ipfs://expo|0|1767225600|1767312000|1' -s hive:curator",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				tx, err := flags.tx(n, args)
				if err != nil {
					return err
				}
				r, err := n.chain.Execute(cmd.Context(), tx)
				if err != nil {
					return err
				}
				if err := jsonLine(cmd.OutOrStdout(), func(w *jwriter.Writer) { writeReceipt(w, r) }); err != nil {
					return err
				}
				if !r.Success {
					return r.Err
				}
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func queryCommand() *cobra.Command {
	flags := &txFlags{}
	cmd := &cobra.Command{
		Use:   "query <contract> <method> [payload]",
		Short: "Run a read-only call, nothing is committed",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				tx, err := flags.tx(n, args)
				if err != nil {
					return err
				}
				r, err := n.chain.Query(cmd.Context(), tx)
				if err != nil {
					return err
				}
				if !r.Success {
					return r.Err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), r.Result)
				return err
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func eventsCommand() *cobra.Command {
	var (
		tag   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List indexed contract events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				if n.index == nil {
					return ErrNoIndex
				}
				events, err := n.index.Events(tag, limit)
				if err != nil {
					return err
				}
				for i := range events {
					if err := jsonLine(cmd.OutOrStdout(), func(w *jwriter.Writer) { writeEvent(w, &events[i]) }); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only events with this tag (ng, cs, cl, ...)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of events, 0 for all")

	cmd.AddCommand(&cobra.Command{
		Use:   "galleries",
		Short: "List the indexed galleries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				if n.index == nil {
					return ErrNoIndex
				}
				galleries, err := n.index.Galleries()
				if err != nil {
					return err
				}
				for i := range galleries {
					if err := jsonLine(cmd.OutOrStdout(), func(w *jwriter.Writer) { writeGallery(w, &galleries[i]) }); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "casts <gallery> <nft>",
		Short: "List the indexed casts on one nft, highest bid first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad gallery id %q", args[0])
			}
			nft, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("bad nft id %q", args[1])
			}
			return withNode(cmd, func(n *node) error {
				if n.index == nil {
					return ErrNoIndex
				}
				casts, err := n.index.Casts(g, nft)
				if err != nil {
					return err
				}
				for i := range casts {
					if err := jsonLine(cmd.OutOrStdout(), func(w *jwriter.Writer) { writeCast(w, &casts[i]) }); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})
	return cmd
}

func metricsCommand() *cobra.Command {
	var (
		addr       string
		scriptFile string
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve prometheus metrics until interrupted, optionally after running a script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *node) error {
				if scriptFile != "" {
					script, err := loadScript(scriptFile)
					if err != nil {
						return err
					}
					if err := runScript(cmd.Context(), n, script, cmd.OutOrStdout()); err != nil {
						return err
					}
				}
				if addr == "" {
					addr = n.cfg.MetricsAddr
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{}))
				srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				errCh := make(chan error, 1)
				go func() { errCh <- srv.ListenAndServe() }()
				logger.Info("serving metrics", zap.String("addr", addr))
				select {
				case err := <-errCh:
					return err
				case <-cmd.Context().Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to metricsAddr from the config")
	cmd.Flags().StringVar(&scriptFile, "script", "", "tx script to run before serving")
	return cmd
}
