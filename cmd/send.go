package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/notify"
	"github.com/chinmay1088/harbor/session"
	"github.com/chinmay1088/harbor/transfer"
	"github.com/chinmay1088/harbor/wallet"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [asset] [amount] [recipient]",
	Short: "Send native currency or tokens",
	Long: `Send the chain's native currency or an ERC-20 token you hold.

The asset is the native symbol of the selected chain (or "native") or the
symbol of a token listed by 'harbor balance'.

Gas tiers: low, medium (default), fast, custom (needs --gwei)

Examples:
  harbor send eth 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  harbor send usdc 25 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6 --gas fast
  harbor send pol 3 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6 --gas custom --gwei 40`,
	Args: cobra.ExactArgs(3),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().String("gas", "medium", "Gas tier: low, medium, fast or custom")
	sendCmd.Flags().String("gwei", "", "Gas price in gwei for the custom tier")
	sendCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	sendCmd.Flags().Bool("no-wait", false, "Return once the transaction is broadcast")
}

func runSend(cmd *cobra.Command, args []string) error {
	tierFlag, _ := cmd.Flags().GetString("gas")
	gwei, _ := cmd.Flags().GetString("gwei")
	yes, _ := cmd.Flags().GetBool("yes")
	noWait, _ := cmd.Flags().GetBool("no-wait")

	tier, err := gas.ParseTier(tierFlag)
	if err != nil {
		return err
	}
	if tier == gas.Custom && gwei == "" {
		return fmt.Errorf("--gas custom needs --gwei <price>")
	}

	var a *app
	var confirm wallet.ConfirmFunc = wallet.AutoConfirm
	if !yes {
		summary := func(tx *types.Transaction, chainID *big.Int) string { return a.txSummary(tx, chainID) }
		confirm = wallet.PromptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), summary)
	}
	a, err = newApp(cmd, wallet.WithConfirm(confirm))
	if err != nil {
		return err
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, commandTimeout)
	client, err := a.dial(dialCtx)
	dialCancel()
	if err != nil {
		return err
	}
	defer client.Close()

	pending := transfer.PendingTransfer{
		Recipient:  args[2],
		Amount:     args[1],
		Asset:      resolveAsset(a, args[0]),
		Tier:       tier,
		CustomGwei: gwei,
	}

	parts := session.Fees
	if !pending.IsNative() {
		parts |= session.Balances
	}
	loadCtx, loadCancel := context.WithTimeout(ctx, commandTimeout)
	err = a.connect(loadCtx, client, parts)
	loadCancel()
	if err != nil && !recoverable(err) {
		return err
	}

	exec := transfer.NewExecutor(transfer.Config{
		Wallet:    a.wallet,
		Client:    client,
		ChainID:   a.chain.ChainID,
		Tokens:    a.store,
		Estimator: a.estimator(),
		Log:       a.log,
	})

	a.println()
	a.printf("💸 Sending %s %s on %s\n", pending.Amount, displayAsset(a, pending.Asset), chainLabel(a.chain))
	a.printf("   To:  %s\n", pending.Recipient)
	a.printf("   Gas: %s\n", tier)
	a.println()

	first, confirmed := exec.Submit(ctx, pending)
	switch first.Status {
	case transfer.Rejected:
		a.notifier.Notify(notify.Notice{
			Level:       notify.Warning,
			Title:       "Transaction not sent",
			Description: first.Reason,
		})
		return nil
	case transfer.Failed:
		return fmt.Errorf("transaction failed: %s", errs.Message(first.Err))
	}

	a.println("✅ Transaction broadcast")
	a.printf("   Hash: %s\n", first.Hash.Hex())
	if url := a.chain.TxURL(first.Hash.Hex()); url != "" {
		a.printf("   🔗 %s\n", url)
	}
	if noWait {
		return nil
	}

	a.println()
	a.println("⏳ Waiting for confirmation...")
	final, ok := <-confirmed
	if !ok {
		return fmt.Errorf("no confirmation received")
	}
	if final.Status != transfer.Confirmed {
		a.printf("❌ %s\n", color.RedString("Transaction %s", final.Reason))
		return fmt.Errorf("transaction %s: %s", final.Hash.Hex(), errs.Message(final.Err))
	}
	a.printf("🎉 %s\n", color.GreenString("Transaction confirmed"))
	return nil
}

// txSummary describes tx for the signing prompt.
func (a *app) txSummary(tx *types.Transaction, chainID *big.Int) string {
	var b strings.Builder
	fmt.Fprintln(&b, "📝 Transaction")
	fmt.Fprintf(&b, "   Chain:     %s\n", chainLabel(a.chain))
	if tx.To() != nil {
		fmt.Fprintf(&b, "   To:        %s\n", tx.To().Hex())
	}
	if len(tx.Data()) > 0 {
		fmt.Fprintf(&b, "   Call data: %d bytes (token transfer)\n", len(tx.Data()))
	}
	fmt.Fprintf(&b, "   Value:     %s %s\n", ethereum.FormatDisplay(ethereum.WeiToEther(tx.Value())), a.chain.NativeSymbol)
	fmt.Fprintf(&b, "   Gas:       %d @ %s gwei\n", tx.Gas(), ethereum.FormatDisplay(ethereum.WeiToGwei(tx.GasPrice())))
	fee := new(big.Int).Mul(tx.GasPrice(), new(big.Int).SetUint64(tx.Gas()))
	fmt.Fprintf(&b, "   Max fee:   %s %s", ethereum.FormatDisplay(ethereum.WeiToEther(fee)), a.chain.NativeSymbol)
	return b.String()
}
