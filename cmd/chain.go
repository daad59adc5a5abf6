package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain [id|name]",
	Short: "Show or change the selected chain",
	Long: `Show the supported chains or switch to another one.
Your address is the same on every chain; only balances and history differ.

Examples:
  harbor chain              # List chains, the selected one is marked
  harbor chain polygon      # Switch to Polygon
  harbor chain 11155111     # Switch to Sepolia`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChain,
}

func runChain(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		showChains(cmd, cfg.Registry, config.SelectedChain(dir))
		return nil
	}

	chain, err := cfg.Registry.Find(args[0])
	if err != nil {
		return fmt.Errorf("%w. Run 'harbor chain' to list supported chains", err)
	}
	if err := config.SaveSelectedChain(dir, chain.ChainID); err != nil {
		return err
	}

	fmt.Fprintf(out, "🌐 Switched to %s\n", color.GreenString(chainLabel(chain)))
	if chain.Testnet {
		fmt.Fprintln(out, "⚠️  This is a testnet: its coins have no value")
	}
	if !chain.SupportsTokens() {
		fmt.Fprintln(out, "⚠️  Token balances are not supported on this chain")
	}
	if !chain.SupportsHistory() {
		fmt.Fprintln(out, "⚠️  Transaction history is not supported on this chain")
	}
	return nil
}

func showChains(cmd *cobra.Command, registry *chains.Registry, selected int64) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🌐 Supported chains")
	fmt.Fprintln(out)

	for _, c := range registry.All() {
		marker := "  "
		name := chainLabel(c)
		if c.ChainID == selected {
			marker = "➜ "
			name = color.GreenString(name)
		} else if c.Testnet {
			name = color.YellowString(name)
		}

		var notes []string
		if !c.SupportsTokens() {
			notes = append(notes, "no tokens")
		}
		if !c.SupportsHistory() {
			notes = append(notes, "no history")
		}

		fmt.Fprintf(out, "%s%s  %s", marker, name, c.NativeSymbol)
		if len(notes) > 0 {
			fmt.Fprintf(out, "  %s", color.RedString("(%s)", strings.Join(notes, ", ")))
		}
		fmt.Fprintln(out)
	}

	if _, err := registry.Lookup(selected); err != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "⚠️  Selected chain %d is not supported, pick one above\n", selected)
	}
}

