package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chinmay1088/harbor/history"
	"github.com/chinmay1088/harbor/session"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transaction history",
	Long: `Export the transaction history of the selected chain.

File formats:
  --csv        Export to CSV format (default)
  --json       Export to JSON format

By default the full history is exported. With --filtered only the
transactions matching --filter and --search are written.

Files are written to ~/.harbor/exports unless --out is given.

Examples:
  harbor export
  harbor export --json
  harbor export --csv --filtered --filter outgoing`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("csv", false, "Export to CSV format")
	exportCmd.Flags().Bool("json", false, "Export to JSON format")
	exportCmd.Flags().Bool("filtered", false, "Export only transactions matching --filter and --search")
	exportCmd.Flags().String("filter", "all", "Direction for --filtered: all, incoming or outgoing")
	exportCmd.Flags().String("search", "", "Search text for --filtered")
	exportCmd.Flags().String("out", "", "Directory to write exports to")
	// viewFromFlags reads it
	exportCmd.Flags().Int("show", history.RevealStep, "")
	_ = exportCmd.Flags().MarkHidden("show")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	csvFlag, _ := cmd.Flags().GetBool("csv")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	filtered, _ := cmd.Flags().GetBool("filtered")
	outDir, _ := cmd.Flags().GetString("out")
	if !csvFlag && !jsonFlag {
		csvFlag = true
	}

	view, err := viewFromFlags(cmd, a)
	if err != nil {
		return err
	}
	if !a.chain.SupportsHistory() {
		a.printf("📜 Transaction history is not supported on %s, nothing to export\n", chainLabel(a.chain))
		return nil
	}

	a.printf("🌐 Network: %s\n", chainLabel(a.chain))
	a.println("📊 Preparing export data...")
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(a.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan][1/3][reset] Fetching transactions..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	_ = bar.Set(0)
	if err := a.connect(ctx, nil, session.History); err != nil {
		_ = bar.Clear()
		if recoverable(err) {
			return nil
		}
		return err
	}
	snap := a.store.Snapshot()
	view = withRecords(view, snap, a)
	records := view.All()
	if filtered {
		records = view.Filtered()
	}

	_ = bar.Set(60)
	bar.Describe("[cyan][2/3][reset] Preparing export directory...")
	if outDir == "" {
		outDir = a.cfg.Path("exports")
	}
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return fmt.Errorf("failed to prepare export directory: %w", err)
	}

	_ = bar.Set(75)
	bar.Describe("[cyan][3/3][reset] Writing export files...")
	base := fmt.Sprintf("harbor_%d_%s", a.chain.ChainID, time.Now().Format("20060102_150405"))
	var written []string
	if csvFlag {
		path := filepath.Join(outDir, base+".csv")
		if err := writeExportFile(path, func(w io.Writer) error {
			return history.WriteCSV(w, records, time.Local)
		}); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		written = append(written, path)
		_ = bar.Add(10)
	}
	if jsonFlag {
		path := filepath.Join(outDir, base+".json")
		if err := writeExportFile(path, func(w io.Writer) error {
			return history.WriteJSON(w, records, a.chain.NativeSymbol, a.chain.TxURL)
		}); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
		written = append(written, path)
		_ = bar.Add(10)
	}

	_ = bar.Set(100)
	bar.Describe("[green][✓][reset] Export completed!")
	a.println()
	a.println()

	a.println("📁 Export completed successfully!")
	a.printf("   Transactions: %d\n", len(records))
	for _, p := range written {
		a.printf("   📄 %s\n", p)
	}
	return nil
}

func writeExportFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
