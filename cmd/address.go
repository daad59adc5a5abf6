package cmd

import (
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show your wallet address",
	Long: `Show your wallet address. The same address is used on every supported
EVM chain.

Example:
  harbor address`,
	RunE: runAddress,
}

func runAddress(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	a.println("📍 Wallet Address")
	a.println()
	a.printf("   %s\n", a.wallet.Address().Hex())
	a.println()
	a.printf("🌐 Selected chain: %s\n", chainLabel(a.chain))
	a.println("💡 This address receives funds on every chain listed by 'harbor chain'")
	return nil
}
