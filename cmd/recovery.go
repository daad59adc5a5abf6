package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chinmay1088/harbor/wallet"
	"github.com/spf13/cobra"
)

var recoveryPhraseCmd = &cobra.Command{
	Use:   "recovery-phrase [show|import]",
	Short: "Manage recovery phrase",
	Long: `Manage your wallet's recovery phrase (mnemonic).

Commands:
  show    - Display the recovery phrase (wallet must be unlocked)
  import  - Import wallet from existing recovery phrase`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"show", "import"},
	RunE:      runRecoveryPhrase,
}

func runRecoveryPhrase(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	switch action := strings.ToLower(args[0]); action {
	case "show":
		return showRecoveryPhrase(a)
	case "import":
		return importRecoveryPhrase(cmd, a)
	default:
		return fmt.Errorf("invalid action: %s. Use 'show' or 'import'", action)
	}
}

func showRecoveryPhrase(a *app) error {
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	mnemonic, err := a.wallet.Mnemonic()
	if err != nil {
		return fmt.Errorf("failed to get mnemonic: %w", err)
	}

	a.println("🔐 Recovery Phrase:")
	a.println()
	a.printf("   %s\n", mnemonic)
	a.println()
	a.println("⚠️  Security Warning:")
	a.println("   - Anyone with this phrase can access your funds")
	a.println("   - Never share it with anyone")
	return nil
}

func importRecoveryPhrase(cmd *cobra.Command, a *app) error {
	if a.wallet.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove existing wallet first")
	}

	a.println("📝 Import Wallet from Recovery Phrase")
	a.println()
	a.printf("Enter recovery phrase: ")
	mnemonic, err := readLine(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read mnemonic: %w", err)
	}
	if _, err := wallet.DeriveKey(mnemonic, wallet.DerivationPath); err != nil {
		if errors.Is(err, wallet.ErrInvalidMnemonic) {
			return fmt.Errorf("invalid recovery phrase. Check the words and their order")
		}
		return err
	}

	password, err := readNewPassword(cmd.InOrStdin(), a.out)
	if err != nil {
		return err
	}

	if err := a.wallet.Import(mnemonic, password); err != nil {
		return fmt.Errorf("failed to import wallet: %w", err)
	}

	a.println("✅ Wallet imported successfully!")
	a.printf("📍 Address: %s\n", a.wallet.Address().Hex())
	return nil
}
