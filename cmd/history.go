package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/history"
	"github.com/chinmay1088/harbor/session"
	"github.com/chinmay1088/harbor/state"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show transaction history",
	Long: `Show the transactions of your address on the selected chain.

History comes from the chain's block explorer and is not available on every
chain ('harbor chain' marks the ones without it).

Examples:
  harbor history                      # Latest transactions
  harbor history --filter incoming    # Only received transactions
  harbor history --search 0xabc       # Match address or hash
  harbor history --show 20            # Show 20 at once
  harbor history --watch              # Refresh every 30 seconds`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("filter", "all", "Direction: all, incoming or outgoing")
	historyCmd.Flags().String("search", "", "Only show transactions whose address or hash contains this")
	historyCmd.Flags().Int("show", history.RevealStep, "Number of transactions to show")
	historyCmd.Flags().Bool("watch", false, "Keep refreshing until interrupted")
	historyCmd.Flags().Duration("interval", 30*time.Second, "Refresh interval for --watch")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	view, err := viewFromFlags(cmd, a)
	if err != nil {
		return err
	}
	if !a.chain.SupportsHistory() {
		a.printf("📜 Transaction history is not supported on %s\n", chainLabel(a.chain))
		return nil
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		return a.watchHistory(cmd, view)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	// history reads the explorer only, no RPC client is needed
	if err := a.connect(ctx, nil, session.History); err != nil && !recoverable(err) {
		return err
	}
	snap := a.store.Snapshot()
	if !snap.HistoryLoaded {
		return nil
	}

	view = withRecords(view, snap, a)
	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	for {
		printHistory(a, view)
		if !interactive || !view.HasMore() {
			return nil
		}
		a.printf("Show %d more? (y/N): ", history.RevealStep)
		answer, err := readLine(in)
		if err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			view.ShowMore()
		default:
			return nil
		}
	}
}

func (a *app) watchHistory(cmd *cobra.Command, view *history.View) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := a.refresher()
	key := state.Key{Address: a.wallet.Address(), ChainID: a.chain.ChainID}
	if err := r.Connect(ctx, nil, key, 0); err != nil {
		return err
	}

	a.printf("👀 Watching history on %s (Ctrl+C to stop)\n", chainLabel(a.chain))
	err := r.Poll(ctx, nil, interval, session.History, func(snap state.Snapshot) {
		if !snap.HistoryLoaded {
			return
		}
		view = withRecords(view, snap, a)
		a.println()
		a.printf("🕒 %s\n", time.Now().Format("15:04:05"))
		printHistory(a, view)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// viewFromFlags builds an empty view with the filter, search and show
// flags applied.
func viewFromFlags(cmd *cobra.Command, a *app) (*history.View, error) {
	filter, _ := cmd.Flags().GetString("filter")
	search, _ := cmd.Flags().GetString("search")
	show, _ := cmd.Flags().GetInt("show")

	dir, err := history.ParseDirection(filter)
	if err != nil {
		return nil, err
	}
	v := history.NewView(nil, a.wallet.Address())
	v.SetDirection(dir)
	v.SetSearch(search)
	if show > 0 {
		v.SetReveal(show)
	}
	return v, nil
}

// withRecords rebuilds v over the snapshot's history, keeping its filters.
func withRecords(v *history.View, snap state.Snapshot, a *app) *history.View {
	nv := history.NewView(snap.History, a.wallet.Address())
	nv.SetDirection(v.Direction())
	nv.SetSearch(v.Search())
	nv.SetReveal(v.Reveal())
	return nv
}

func printHistory(a *app, v *history.View) {
	all := v.All()
	filtered := v.Filtered()
	visible := v.Visible()

	a.println()
	a.printf("📜 Transactions on %s\n", chainLabel(a.chain))
	if len(all) == 0 {
		a.println("   No transactions found")
		return
	}
	if len(filtered) == 0 {
		a.println("   No transactions match the current filter")
		return
	}

	owner := strings.ToLower(a.wallet.Address().Hex())
	for _, r := range visible {
		arrow := color.GreenString("⬇ IN ")
		counterparty := r.From
		if strings.ToLower(r.From) == owner {
			arrow = color.YellowString("⬆ OUT")
			counterparty = r.To
		}
		if counterparty == "" {
			counterparty = "contract creation"
		}

		value := "0"
		if r.Value != nil {
			value = ethereum.FormatDisplay(ethereum.WeiToEther(r.Value))
		}
		status := color.GreenString(r.Status())
		if r.IsError {
			status = color.RedString(r.Status())
		}

		a.printf("%s %s  %s  %s %s  %s  %s\n",
			arrow,
			truncateAddress(r.Hash),
			truncateAddress(counterparty),
			value, a.chain.NativeSymbol,
			status,
			color.HiBlackString(r.Timestamp.Local().Format("2006-01-02 15:04")),
		)
	}
	a.println()
	a.printf("Showing %d of %d (%d total)\n", len(visible), len(filtered), len(all))
}
