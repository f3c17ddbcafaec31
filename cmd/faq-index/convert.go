package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bull/faq-semantic-index/internal/extract"
	"github.com/bull/faq-semantic-index/internal/faq"
)

var (
	convertInput  string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a FAQ spreadsheet (.xlsx or .csv) into the FAQ JSON file",
	Long: `Reads a spreadsheet with Kategori, Question and Answer columns and writes
the grouped FAQ file consumed by "faq-index index".

The header row may appear anywhere in the first rows of the sheet. Rows with an
empty cell are skipped and categories keep their first-seen order.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "spreadsheet to convert (.xlsx or .csv)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "data/faq.json", "FAQ JSON file to write")
	_ = convertCmd.MarkFlagRequired("input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	groups, stats, err := extract.File(convertInput)
	if err != nil {
		return err
	}
	if stats.Entries == 0 {
		return fmt.Errorf("no complete FAQ rows found in %s", convertInput)
	}

	if err := faq.WriteFile(convertOutput, groups); err != nil {
		return err
	}

	fmt.Printf("Converted %d entries in %d categories to %s\n", stats.Entries, stats.Categories, convertOutput)
	if stats.Skipped > 0 {
		fmt.Printf("  Skipped: %d incomplete rows\n", stats.Skipped)
	}
	return nil
}
