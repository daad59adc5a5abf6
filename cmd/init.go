package cmd

import (
	"fmt"

	"github.com/chinmay1088/harbor/wallet"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new wallet",
	Long: `Initialize a new Harbor wallet with a secure recovery phrase.

This command will:
  - Generate a new 24-word recovery phrase
  - Create an encrypted vault in ~/.harbor
  - Derive your address (m/44'/60'/0'/0/0), shared by every EVM chain`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if a.wallet.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove %s to create a new wallet", a.cfg.Path(wallet.VaultFile))
	}

	a.println("🚀 Initializing Harbor Wallet")
	a.println()

	password, err := readNewPassword(cmd.InOrStdin(), a.out)
	if err != nil {
		return err
	}

	a.println("Generating wallet...")
	mnemonic, err := a.wallet.Initialize(password)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet: %w", err)
	}

	a.println("✅ Wallet initialized successfully!")
	a.println()
	a.println("🔐 Recovery Phrase (24 words):")
	a.println()
	a.printf("   %s\n", mnemonic)
	a.println()
	a.println("⚠️  IMPORTANT:")
	a.println("   - Write down this recovery phrase and store it securely")
	a.println("   - Anyone with this phrase can access your funds")
	a.println("   - This is the only way to recover your wallet")
	a.println()
	a.printf("📍 Address: %s\n", a.wallet.Address().Hex())
	a.println()
	a.println("🔑 Next steps:")
	a.println("   - Run 'harbor chain' to pick a network")
	a.println("   - Run 'harbor balance' to check your balances")

	return nil
}
