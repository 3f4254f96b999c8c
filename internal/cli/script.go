package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"okinoko_gallery/chain"
	"okinoko_gallery/sdk"
)

// Script is a YAML list of transactions run in order on one chain.
//
//	steps:
//	  - sender: hive:curator
//	    contract: gallery
//	    method: create_gallery
//	    payload: expo|ipfs://expo|0|1756944000|1757030400|1
//	    at: 2025-09-03T00:00:00
//	    save: g
//	  - sender: hive:alice
//	    contract: ticketing
//	    method: buy_ticket
//	    payload: ${g}
//	    expect: fail
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
}

type ScriptStep struct {
	Sender   string `yaml:"sender"`
	Contract string `yaml:"contract"`
	Method   string `yaml:"method"`
	// Payload may reference saved results as ${name}.
	Payload string `yaml:"payload"`
	At      string `yaml:"at"`
	// Expect is ok (default) or fail.
	Expect string `yaml:"expect"`
	// Query runs the step without committing.
	Query bool `yaml:"query"`
	// Save stores the result under a name for later payloads.
	Save string `yaml:"save"`
}

func loadScript(path string) (*Script, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	script := &Script{}
	if err := yaml.Unmarshal(buf, script); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	for i, s := range script.Steps {
		if s.Contract == "" || s.Method == "" {
			return nil, fmt.Errorf("script step %d needs contract and method", i+1)
		}
		if s.Expect != "" && s.Expect != "ok" && s.Expect != "fail" {
			return nil, fmt.Errorf("script step %d: expect must be ok or fail, got %q", i+1, s.Expect)
		}
	}
	return script, nil
}

// runScript executes every step and prints one receipt per line. It stops at the first
// step whose outcome differs from its expectation.
func runScript(ctx context.Context, n *node, script *Script, out io.Writer) error {
	saved := make(map[string]string)
	for i, s := range script.Steps {
		ts, err := parseTime(s.At)
		if err != nil {
			return fmt.Errorf("script step %d: %w", i+1, err)
		}
		sender := sdk.Address(s.Sender)
		if sender == sdk.ZeroAddress {
			sender = sdk.Address(n.cfg.Admin)
		}
		tx := chain.Tx{
			Sender:    sender,
			Contract:  contractAddress(s.Contract),
			Method:    s.Method,
			Payload:   os.Expand(s.Payload, func(name string) string { return saved[name] }),
			Timestamp: ts,
		}
		var r *chain.Receipt
		if s.Query {
			r, err = n.chain.Query(ctx, tx)
		} else {
			r, err = n.chain.Execute(ctx, tx)
		}
		if err != nil {
			return fmt.Errorf("script step %d: %w", i+1, err)
		}
		if err := jsonLine(out, func(w *jwriter.Writer) { writeReceipt(w, r) }); err != nil {
			return err
		}
		wantOK := s.Expect != "fail"
		if r.Success != wantOK {
			if r.Err != nil {
				return fmt.Errorf("script step %d (%s.%s) failed: %w", i+1, s.Contract, s.Method, r.Err)
			}
			return fmt.Errorf("script step %d (%s.%s) succeeded but was expected to fail", i+1, s.Contract, s.Method)
		}
		if s.Save != "" && r.Success {
			saved[s.Save] = r.Result
		}
	}
	return nil
}

func scriptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file.yaml>",
		Short: "Run a YAML transaction script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *node) error {
				return runScript(cmd.Context(), n, script, cmd.OutOrStdout())
			})
		},
	}
}
