package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/savemoney/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV or Excel",
	Example: `  savemoney export --out ledger.xlsx
  savemoney export --format csv > ledger.csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "csv or xlsx (default: from --out extension, else csv)")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default: stdout, csv only)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := exportFormat(flagExportFormat, flagExportOut)
	if err != nil {
		return err
	}
	if format == export.XLSX && flagExportOut == "" {
		return errors.New("xlsx export needs --out FILE")
	}

	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	txs := l.Transactions()
	write := func(w io.Writer) error {
		if format == export.XLSX {
			return export.WriteXLSX(w, txs, l.Status(), l.Location())
		}
		return export.WriteCSV(w, txs, l.Location())
	}

	if flagExportOut == "" {
		return write(os.Stdout)
	}
	if err := writeExportFile(flagExportOut, write); err != nil {
		return err
	}
	progress("Exported %d transactions to %s", len(txs), flagExportOut)
	return nil
}

// writeExportFile creates path and runs write on it. A failed close is
// reported, since that is where buffered data reaches the disk.
func writeExportFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return write(f)
}

// exportFormat picks the format from the flag, then the file extension,
// falling back to csv.
func exportFormat(flag, out string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if out != "" {
		if f, err := export.ParseFormat(out); err == nil {
			return f, nil
		}
	}
	return export.CSV, nil
}
