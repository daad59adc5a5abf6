package cmd

import (
	"context"

	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/session"
	"github.com/chinmay1088/harbor/state"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check native and token balances",
	Long: `Check your native and ERC-20 token balances on the selected chain.

Token balances come from Alchemy (Ethereum, OP, Polygon, Arbitrum, Sepolia;
needs HARBOR_ALCHEMY_API_KEY) or Ankr (BNB Smart Chain and its testnet).

Examples:
  harbor balance               # Balances on the selected chain
  harbor balance --usd         # Include the USD value of the native balance
  harbor balance --chain 137   # Balances on Polygon`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().Bool("usd", false, "Show the native balance in USD")
}

func runBalance(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}
	usdFlag, _ := cmd.Flags().GetBool("usd")

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	client, err := a.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := a.connect(ctx, client, session.Balances); err != nil && !recoverable(err) {
		return err
	}

	snap := a.store.Snapshot()
	a.println()
	a.println("💰 Wallet Balances")
	a.printf("🌐 Network: %s\n", chainLabel(a.chain))
	a.printf("📍 Address: %s\n", snap.Key.Address.Hex())
	a.println()

	if snap.NativeBalance == "" {
		a.printf("🔷 %s: %s\n", a.chain.NativeSymbol, color.RedString("unavailable"))
		return nil
	}
	a.printf("🔷 %s: %s\n", a.chain.NativeSymbol, snap.NativeBalance)
	if usdFlag {
		a.printUSD(ctx, snap)
	}

	a.println()
	printTokens(a, snap)
	return nil
}

func (a *app) printUSD(ctx context.Context, snap state.Snapshot) {
	if a.chain.PriceID == "" {
		a.println("   💵 USD: not available on this network")
		return
	}
	price, err := a.api.GetPrice(ctx, a.cfg.CoinGeckoURL, a.chain.PriceID)
	if err != nil {
		a.printf("   💵 USD: Error fetching price - %s\n", errs.Message(err))
		return
	}
	amount, err := decimal.NewFromString(snap.NativeBalance)
	if err != nil {
		return
	}
	a.printf("   💵 USD: $%s\n", amount.Mul(price.USD).StringFixed(2))
}

func printTokens(a *app, snap state.Snapshot) {
	switch {
	case snap.Unsupported:
		a.println("🪙 Tokens: not supported on this network")
		return
	case !snap.TokensLoaded:
		a.println("🪙 Tokens: unavailable")
		return
	case len(snap.Tokens) == 0:
		a.println("🪙 Tokens: none")
		return
	}

	a.printf("🪙 Tokens (%d):\n", len(snap.Tokens))
	for _, t := range snap.Tokens {
		name := t.Name
		if name == "" {
			name = truncateAddress(t.ContractAddress.Hex())
		}
		a.printf("   %-10s %20s   %s\n", t.Symbol, t.Balance, color.HiBlackString(name))
	}
}
