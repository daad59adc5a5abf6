package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harbor",
	Short: "A multi-chain EVM wallet for the command line",
	Long: `Harbor is a command-line wallet for Ethereum and EVM-compatible chains.
One recovery phrase gives one address that works on every supported chain.

Features:
  • Native and ERC-20 balances per chain
  • Low / medium / fast / custom gas pricing
  • Native and token transfers with confirmation tracking
  • Transaction history with filtering, search and CSV/JSON export
  • BIP-39 recovery phrase, AES-256-GCM encrypted vault

Supported chains:
  Ethereum (1), OP Mainnet (10), BNB Smart Chain (56), BSC Testnet (97),
  Polygon (137), Base (8453), Arbitrum One (42161), Sepolia (11155111)

Examples:
  harbor init                                  # Create new wallet
  harbor unlock                                # Unlock wallet
  harbor chain sepolia                         # Switch to Sepolia
  harbor balance --usd                         # Check balances with USD value
  harbor gas                                   # Show current gas tiers
  harbor send eth 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  harbor send usdc 25 0x742d... --gas fast     # Send a token
  harbor history --filter in --search 0x742d   # Incoming transfers
  harbor export --csv --json                   # Export history`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().Int64("chain", 0, "chain id to use instead of the selected chain")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(recoveryPhraseCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(gasCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Harbor Wallet v%s\n", version)
	},
}
