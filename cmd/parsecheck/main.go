// parsecheck runs the import pipeline over a statement file and prints what
// it would produce. Useful for debugging header detection, locale settings
// and mapping guesses against a new bank's export without starting the
// server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/importer"
	"ledgerlens/internal/logger"
)

func main() {
	var (
		delimiter  = flag.String("delimiter", ",", "Cell delimiter for CSV input")
		dateFormat = flag.String("date", domain.DefaultImportSettings().DateFormat, "Date format: YYYY-MM-DD, DD.MM.YYYY or MM/DD/YYYY")
		decimalSep = flag.String("decimal", ".", "Decimal separator: . or ,")
		expenses   = flag.Bool("positive-is-expense", false, "Treat positive amounts as expenses")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: parsecheck [flags] <statement.csv|statement.xlsx>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		color.Red("Cannot open %s: %v", path, err)
		os.Exit(1)
	}
	defer file.Close()

	settings := domain.ImportSettings{
		Delimiter:        *delimiter,
		DateFormat:       *dateFormat,
		DecimalSeparator: *decimalSep,
		Direction:        domain.PositiveIsIncome,
	}
	if *expenses {
		settings.Direction = domain.PositiveIsExpense
	}

	log := logger.New()
	state := &importer.State{
		Filename: filepath.Base(path),
		Reader:   file,
		Settings: settings,
		Source:   filepath.Base(path),
	}

	pipeline := importer.NewImportPipeline(log)
	if err := pipeline.Execute(context.Background(), state); err != nil {
		color.Red("Import failed: %v", err)
		os.Exit(1)
	}

	bold := color.New(color.Bold)
	bold.Printf("File: %s\n", path)
	fmt.Printf("Headers: %v\n", state.Grid.Headers)
	fmt.Printf("Mapping: date=%d description=%d amount=%d category=%d type=%d\n",
		state.ResolvedMapping.Date,
		state.ResolvedMapping.Description,
		state.ResolvedMapping.Amount,
		state.ResolvedMapping.Category,
		state.ResolvedMapping.Type)
	fmt.Printf("Rows: %d  Imported: %d  Failed: %d\n\n",
		len(state.Grid.Rows),
		len(state.Result.Transactions),
		len(state.Result.Failures))

	var income, expense float64
	for _, t := range state.Result.Transactions {
		if t.Type == domain.Income {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}
	color.Green("Income:   %10.2f", income)
	color.Yellow("Expenses: %10.2f", expense)
	fmt.Println()

	bold.Println("Transactions:")
	for _, t := range state.Result.Transactions {
		line := fmt.Sprintf("  %s | %-7s | %10.2f | %-14s | %s",
			t.Date, t.Type, t.Amount, t.Category, t.Description)
		if t.Type == domain.Income {
			color.Green(line)
		} else {
			fmt.Println(line)
		}
	}

	if len(state.Result.Failures) > 0 {
		fmt.Println()
		bold.Println("Failed rows:")
		for _, f := range state.Result.Failures {
			color.Red("  row %d: %s  %v", f.Row, f.Reason, f.Cells)
		}
	}
}
