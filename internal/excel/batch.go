package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sheetStamp/internal/logger"
	"sheetStamp/internal/stamp"
)

// FileOptions selects the sheet and table style for a file and carries the
// stamp options.
type FileOptions struct {
	Sheet      string
	TableStyle string
	Stamp      stamp.Options
}

// FileResult is the outcome of stamping one workbook.
type FileResult struct {
	Input  string
	Output string
	Result *stamp.Result
	Err    error
}

// StampFile stamps one sheet of inputFilePath and saves the workbook to
// outputFilePath, or in place when outputFilePath is empty. The workbook is
// not saved when the run fails.
func StampFile(ctx context.Context, inputFilePath, outputFilePath string, opts FileOptions) (*stamp.Result, error) {
	if err := validateInputFile(inputFilePath); err != nil {
		return nil, err
	}

	editor, err := OpenFile(inputFilePath)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	tableStyle := opts.TableStyle
	if tableStyle == "" {
		tableStyle = DefaultTableStyle
	}
	sheet, err := editor.Worksheet(opts.Sheet, tableStyle)
	if err != nil {
		return nil, err
	}

	result, err := stamp.Run(ctx, sheet, opts.Stamp)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp sheet %q: %w", sheet.Name(), err)
	}

	if outputFilePath == "" {
		err = editor.Save()
	} else {
		if err := os.MkdirAll(filepath.Dir(outputFilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		err = editor.SaveAs(outputFilePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}

	return result, nil
}

// StampFiles stamps every file into resultsDir under its own base name. A
// failing file is recorded and the rest are still processed.
func StampFiles(ctx context.Context, files []string, resultsDir string, opts FileOptions) ([]FileResult, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	results := make([]FileResult, 0, len(files))
	for i, inputFile := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		fileName := filepath.Base(inputFile)
		outputFile := filepath.Join(resultsDir, fileName)
		logger.Info("Processing file", "file", fileName, "progress", fmt.Sprintf("%d/%d", i+1, len(files)))

		result, err := StampFile(ctx, inputFile, outputFile, opts)
		if err != nil {
			logger.Error("Failed to stamp file", "file", fileName, "error", err)
			outputFile = ""
		} else {
			logger.Info("Successfully stamped file", "file", fileName, "table_range", result.TableRange.Address())
		}

		results = append(results, FileResult{
			Input:  inputFile,
			Output: outputFile,
			Result: result,
			Err:    err,
		})
	}
	return results, nil
}

// StampAll stamps every .xlsx file found under inputDir into
// outputDir/results.
func StampAll(ctx context.Context, inputDir, outputDir string, opts FileOptions) ([]FileResult, error) {
	files, err := GetXlsxFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get xlsx files: %w", err)
	}
	logger.Info("Found files to stamp", "input_directory", inputDir, "file_count", len(files))

	return StampFiles(ctx, files, ResultsDir(outputDir), opts)
}

// ResultsDir returns the directory stamped copies are written to.
func ResultsDir(outputDir string) string {
	return filepath.Join(outputDir, "results")
}

// validateInputFile validates that the input file exists
func validateInputFile(inputFilePath string) error {
	if _, err := os.Stat(inputFilePath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputFilePath)
	}
	return nil
}
