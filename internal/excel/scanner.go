package excel

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"sheetStamp/internal/logger"
)

// ScanEntry describes one sheet of a scanned workbook.
type ScanEntry struct {
	File      string
	Sheet     string
	UsedRange string
	Tables    []string
	Stamped   bool
}

// ScanDirectory inspects every sheet of every .xlsx file in inputDir and
// reports its used range and tables. A sheet already holding a table named
// tableName is marked as stamped, since stamping it again would fail. The
// listing is also written to outputDir/scanned_workbooks.
func ScanDirectory(ctx context.Context, inputDir, outputDir, tableName string) ([]ScanEntry, error) {
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create input directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	xlsxFiles, err := GetXlsxFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get xlsx files: %w", err)
	}

	var entries []ScanEntry
	for _, filePath := range xlsxFiles {
		fileEntries, err := scanFile(ctx, filePath, tableName)
		if err != nil {
			logger.Warn("Failed to scan file", "file", filepath.Base(filePath), "error", err)
			continue
		}
		entries = append(entries, fileEntries...)
	}

	outputFilePath := filepath.Join(outputDir, "scanned_workbooks")
	if err := writeScanFile(outputFilePath, entries); err != nil {
		return nil, fmt.Errorf("failed to write scan results: %w", err)
	}

	logger.Info("Scan completed", "files", len(xlsxFiles), "sheets", len(entries), "output", outputFilePath)
	return entries, nil
}

// GetXlsxFiles returns all .xlsx files under dir, skipping Excel lock files.
func GetXlsxFiles(dir string) ([]string, error) {
	var xlsxFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if !info.IsDir() && strings.ToLower(filepath.Ext(name)) == ".xlsx" && !strings.HasPrefix(name, "~$") {
			xlsxFiles = append(xlsxFiles, path)
		}

		return nil
	})

	return xlsxFiles, err
}

func scanFile(ctx context.Context, filePath, tableName string) ([]ScanEntry, error) {
	editor, err := OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	var entries []ScanEntry
	for _, sheetName := range editor.GetSheetNames() {
		sheet, err := editor.Worksheet(sheetName, "")
		if err != nil {
			return nil, err
		}

		used, err := sheet.UsedRange(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}
		tables, err := sheet.Tables()
		if err != nil {
			return nil, fmt.Errorf("failed to read tables of sheet %s: %w", sheetName, err)
		}

		entries = append(entries, ScanEntry{
			File:      filePath,
			Sheet:     sheetName,
			UsedRange: used.Address(),
			Tables:    tables,
			Stamped:   slices.Contains(tables, tableName),
		})
	}
	return entries, nil
}

// writeScanFile writes one tab-separated line per sheet
func writeScanFile(filename string, entries []ScanEntry) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, e := range entries {
		status := "pending"
		if e.Stamped {
			status = "stamped"
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n", e.File, e.Sheet, e.UsedRange, strings.Join(e.Tables, ","), status)
		if _, err := writer.WriteString(line); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}
	return writer.Flush()
}
