// Package main provides the sheetstamp CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"sheetStamp/internal/config"
	"sheetStamp/internal/excel"
	"sheetStamp/internal/gsheet"
	"sheetStamp/internal/logger"
	"sheetStamp/internal/picker"
	"sheetStamp/internal/report"
	"sheetStamp/internal/stamp"

	"github.com/spf13/cobra"
)

const reportFileName = "stamp_report.json"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetstamp",
		Short: "Stamp worksheets with a processing date and wrap them in a table",
		Long: `sheetstamp writes a localized "processing date" label above the data
of a worksheet, shifts the data one row down, autofits the columns and
adds a named table over the result. Works on .xlsx files and Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init-config" {
				return nil
			}
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				logger.Error("Failed to load config", "error", err)
				return err
			}
			cfg = loaded
			if err := logger.Setup(cfg.Log.Directory, cfg.Log.Level); err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML config file")

	rootCmd.AddCommand(
		newStampCmd(),
		newStampAllCmd(),
		newScanCmd(),
		newPickCmd(),
		newGSheetCmd(),
		newInitConfigCmd(),
	)
	return rootCmd
}

func newStampCmd() *cobra.Command {
	var sheet, out string

	cmd := &cobra.Command{
		Use:   "stamp <file.xlsx>",
		Short: "Stamp one workbook in place or into --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := cfg.FileOptions()
			if err != nil {
				return err
			}
			if sheet != "" {
				opts.Sheet = sheet
			}

			logger.Info("Starting stamp operation", "input_file", args[0], "output_file", out)
			res, err := excel.StampFile(cmd.Context(), args[0], out, opts)
			if err != nil {
				logger.Error("Stamp operation failed", "input_file", args[0], "error", err)
				printFailure(args[0], err)
				return err
			}

			printResult(args[0], res)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to stamp (default: [workbook] sheet, then the active sheet)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the stamped workbook here instead of overwriting the input")
	return cmd
}

func newStampAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stamp-all",
		Short: "Stamp every .xlsx file in the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return stampBatch(func(opts excel.FileOptions) ([]excel.FileResult, error) {
				return excel.StampAll(ctx, cfg.Scan.InputDirectory, cfg.Scan.OutputDirectory, opts)
			})
		},
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List workbooks in the input directory and whether they are stamped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := excel.ScanDirectory(cmd.Context(), cfg.Scan.InputDirectory, cfg.Scan.OutputDirectory, cfg.Stamp.TableName)
			if err != nil {
				logger.Error("Scan operation failed", "error", err)
				return err
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("Scanned %d worksheets", len(entries))))
			for _, e := range entries {
				status := mutedStyle.Render("pending")
				if e.Stamped {
					status = successStyle.Render("stamped")
				}
				used := e.UsedRange
				if used == "" {
					used = "<empty>"
				}
				fmt.Printf("  %s [%s] %s %s\n", filepath.Base(e.File), e.Sheet, used, status)
			}
			fmt.Printf("Listing saved to: %s\n", filepath.Join(cfg.Scan.OutputDirectory, "scanned_workbooks"))
			return nil
		},
	}
}

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose workbooks interactively, then stamp them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := excel.GetXlsxFiles(cfg.Scan.InputDirectory)
			if err != nil {
				return fmt.Errorf("failed to list workbooks: %w", err)
			}

			chosen, err := picker.Run(files, picker.Config{PageSize: cfg.UI.PageSize})
			if err != nil {
				logger.Error("Picker failed", "error", err)
				return err
			}
			if len(chosen) == 0 {
				fmt.Println("Nothing selected.")
				return nil
			}
			ctx := cmd.Context()
			return stampBatch(func(opts excel.FileOptions) ([]excel.FileResult, error) {
				return excel.StampFiles(ctx, chosen, excel.ResultsDir(cfg.Scan.OutputDirectory), opts)
			})
		},
	}
}

func newGSheetCmd() *cobra.Command {
	var spreadsheetID, sheet string

	cmd := &cobra.Command{
		Use:   "gsheet",
		Short: "Stamp a tab of a Google Sheets spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetsCfg := cfg.GoogleSheets()
			if spreadsheetID != "" {
				sheetsCfg.SpreadsheetID = spreadsheetID
			}
			if sheet != "" {
				sheetsCfg.Sheet = sheet
			}
			if sheetsCfg.SpreadsheetID == "" {
				return errors.New("no spreadsheet ID: pass --spreadsheet or set [sheets] spreadsheet_id")
			}

			formatter, err := cfg.LabelFormatter()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := gsheet.NewService(ctx, sheetsCfg)
			if err != nil {
				return err
			}
			ws, err := gsheet.Open(ctx, svc, sheetsCfg.SpreadsheetID, sheetsCfg.Sheet)
			if err != nil {
				return err
			}

			logger.Info("Starting Google Sheets stamp", "spreadsheet_id", sheetsCfg.SpreadsheetID, "sheet", ws.Name())
			res, err := stamp.Run(ctx, ws, stamp.Options{Formatter: formatter, TableName: cfg.Stamp.TableName})
			if err != nil {
				logger.Error("Google Sheets stamp failed", "spreadsheet_id", sheetsCfg.SpreadsheetID, "error", err)
				printFailure(sheetsCfg.SpreadsheetID, err)
				return err
			}
			printResult(sheetsCfg.SpreadsheetID, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "Spreadsheet ID (default: [sheets] spreadsheet_id)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Tab title (default: [sheets] sheet, then the first tab)")
	return cmd
}

func newInitConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
			}
			if err := config.SaveConfig(configPath, config.Default()); err != nil {
				return err
			}
			fmt.Printf("Config written to: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// stampBatch runs a batch with the configured options, saves the run report
// and prints a summary. It fails when any workbook failed.
func stampBatch(run func(opts excel.FileOptions) ([]excel.FileResult, error)) error {
	opts, err := cfg.FileOptions()
	if err != nil {
		return err
	}

	resultsDir := excel.ResultsDir(cfg.Scan.OutputDirectory)
	logger.Info("Starting batch stamp", "results_dir", resultsDir)

	rep := report.New()
	results, err := run(opts)
	if err == nil && len(results) == 0 {
		fmt.Printf("No .xlsx files found in directory: %s\n", cfg.Scan.InputDirectory)
		return nil
	}
	for i, r := range results {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(results), filepath.Base(r.Input))
		if r.Err != nil {
			printFailure(r.Input, r.Err)
		} else {
			printResult(r.Input, r.Result)
		}
		rep.Add(r.Input, opts.Sheet, r.Result, r.Err)
	}

	reportPath := filepath.Join(cfg.Scan.OutputDirectory, reportFileName)
	if saveErr := rep.SaveToFile(reportPath); saveErr != nil {
		logger.Error("Failed to save report", "path", reportPath, "error", saveErr)
	}
	if err != nil {
		return err
	}

	succeeded, failed := rep.Summary()
	logger.Info("Batch stamp completed", "success_count", succeeded, "error_count", failed)

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	fmt.Println(titleStyle.Render("Stamping complete!"))
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Success: %d files", succeeded)))
	if failed > 0 {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Errors: %d files", failed)))
	}
	fmt.Printf("Results saved to: %s\n", resultsDir)
	fmt.Printf("Report saved to: %s\n", reportPath)

	if failed > 0 {
		return fmt.Errorf("%d of %d workbooks failed", failed, len(results))
	}
	return nil
}

func printResult(source string, res *stamp.Result) {
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s [%s]: %q", filepath.Base(source), res.Sheet, res.Label)))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("  shifted %d rows x %d columns, table %s over %s",
		res.RowsShifted, res.Columns, res.Table, res.TableRange.Address())))
}

func printFailure(source string, err error) {
	msg := fmt.Sprintf("❌ %s: %v", filepath.Base(source), err)
	if stamp.IsRerun(err) {
		msg += " (the worksheet looks already stamped)"
	}
	fmt.Println(errorStyle.Render(msg))
}
