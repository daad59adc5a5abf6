package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
)

// PromptConfirm returns a ConfirmFunc that prints summary(tx, chainID) to out
// and reads a yes/no answer from in. Anything but y or yes declines.
func PromptConfirm(in io.Reader, out io.Writer, summary func(*types.Transaction, *big.Int) string) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, tx *types.Transaction, chainID *big.Int) (bool, error) {
		if summary != nil {
			fmt.Fprintln(out, summary(tx, chainID))
		}
		fmt.Fprint(out, "Sign and send this transaction? (y/N): ")

		type answer struct {
			line string
			err  error
		}
		ch := make(chan answer, 1)
		go func() {
			line, err := reader.ReadString('\n')
			ch <- answer{line, err}
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case a := <-ch:
			if a.err != nil && a.err != io.EOF {
				return false, fmt.Errorf("failed to read confirmation: %w", a.err)
			}
			switch strings.ToLower(strings.TrimSpace(a.line)) {
			case "y", "yes":
				return true, nil
			}
			return false, nil
		}
	}
}

// AutoConfirm approves every transaction.
func AutoConfirm(context.Context, *types.Transaction, *big.Int) (bool, error) {
	return true, nil
}
