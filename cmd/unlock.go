package cmd

import (
	"errors"
	"fmt"

	"github.com/chinmay1088/harbor/crypto"
	"github.com/chinmay1088/harbor/wallet"
	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock wallet for session",
	Long: fmt.Sprintf(`Unlock your Harbor wallet.
The vault is decrypted and a session is kept for %d minutes, or until
you run 'harbor lock'.

Example:
  harbor unlock`, int(wallet.SessionDuration.Minutes())),
	RunE: runUnlock,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the wallet and end the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.wallet.Lock(); err != nil {
			return err
		}
		a.println("🔒 Wallet locked")
		return nil
	},
}

func runUnlock(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if !a.wallet.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'harbor init' to create a new wallet")
	}
	if a.wallet.IsConnected() {
		a.println("✅ Wallet is already unlocked")
		return nil
	}

	password, err := readPassword(cmd.InOrStdin(), a.out, "Enter your wallet password: ")
	if err != nil {
		return err
	}

	a.println("Unlocking wallet...")
	if err := a.wallet.Unlock(password); err != nil {
		if errors.Is(err, crypto.ErrWrongPassword) {
			return fmt.Errorf("invalid password")
		}
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}

	a.println("✅ Wallet unlocked successfully!")
	a.printf("📍 Address: %s\n", a.wallet.Address().Hex())
	a.printf("🌐 Chain:   %s\n", chainLabel(a.chain))
	a.println("💡 Use 'harbor balance' to check your balances")

	return nil
}
