package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/session"
	"github.com/chinmay1088/harbor/transfer"
	"github.com/spf13/cobra"
)

var gasCmd = &cobra.Command{
	Use:   "gas [asset amount recipient]",
	Short: "Show gas price tiers and estimate a transfer",
	Long: `Show the low, medium and fast gas prices of the selected chain.
With an asset, amount and recipient the gas limit of that transfer is
estimated as well.

Examples:
  harbor gas
  harbor gas eth 0.5 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  harbor gas usdc 100 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 3 {
			return fmt.Errorf("expected no arguments or asset, amount and recipient")
		}
		return nil
	},
	RunE: runGas,
}

func runGas(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	client, err := a.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	est := a.estimator()
	fees := est.EstimateFees(ctx, client)

	a.printf("⛽ Gas prices on %s\n", chainLabel(a.chain))
	a.println()
	printFees(a, fees)

	if len(args) == 0 {
		return nil
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	asset := resolveAsset(a, args[0])
	intent := gas.Intent{From: a.wallet.Address(), Recipient: args[2], Amount: args[1]}
	if asset != transfer.NativeAsset {
		// the token's contract and decimals come from the balance list
		if err := a.connect(ctx, client, session.Balances); err != nil && !recoverable(err) {
			return err
		}
		token, ok := a.store.Token(asset)
		if !ok {
			return fmt.Errorf("token %s not found in your balances on %s", asset, a.chain.Name)
		}
		intent.Token = &gas.TokenRef{Contract: token.ContractAddress, Decimals: token.Decimals}
	}

	limit := est.EstimateLimit(ctx, client, intent)
	a.println()
	a.printf("📐 Gas limit for %s %s: %s\n", args[1], displayAsset(a, asset), limit)
	if limit.Available() && fees.Available() {
		for _, tier := range []gas.Tier{gas.Low, gas.Medium, gas.Fast} {
			price, err := gas.ResolvePrice(fees, tier, "")
			if err != nil {
				continue
			}
			cost := new(big.Int).Mul(price, new(big.Int).SetUint64(uint64(limit)))
			a.printf("   %-6s ~%s %s\n", tier, ethereum.FormatDisplay(ethereum.WeiToEther(cost)), a.chain.NativeSymbol)
		}
	}
	return nil
}

func printFees(a *app, fees gas.Estimate) {
	a.printf("   🐢 Low:    %s gwei\n", fees.Low)
	a.printf("   🚶 Medium: %s gwei\n", fees.Medium)
	a.printf("   🚀 Fast:   %s gwei\n", fees.Fast)
	if !fees.Available() {
		a.println("   ⚠️  Fee data unavailable, use --gas custom --gwei <price> to send")
	}
}

// resolveAsset maps the chain's native symbol (or "native") to
// transfer.NativeAsset and upper-cases token symbols.
func resolveAsset(a *app, s string) string {
	if strings.EqualFold(s, a.chain.NativeSymbol) || strings.EqualFold(s, transfer.NativeAsset) {
		return transfer.NativeAsset
	}
	return strings.ToUpper(s)
}

func displayAsset(a *app, asset string) string {
	if asset == transfer.NativeAsset {
		return a.chain.NativeSymbol
	}
	return asset
}
