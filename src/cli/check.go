package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/foliomap/src/gsheets"
	"github.com/username/foliomap/src/parsers"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the Google Sheets connection and worksheet shape",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := gsheets.NewClient(cfg.GSheets.ServiceAccountJSONPath)
		if err != nil {
			return err
		}

		rs, err := client.FetchRecords(cmd.Context(), cfg.GSheets.SpreadsheetID, cfg.GSheets.Worksheet)
		if err != nil {
			return err
		}

		fmt.Println("Google Sheets smoke test")
		fmt.Printf("Config source: %s\n", cfg.Source)
		fmt.Printf("Worksheet: %s\n", cfg.GSheets.Worksheet)
		fmt.Printf("Rows: %d, Columns: %d\n", len(rs.Rows), len(rs.Headers))
		fmt.Printf("Columns: %v\n", rs.Headers)

		if rs.IsEmpty() {
			fmt.Println("No data returned from worksheet.")
			return nil
		}
		fmt.Println("Preview (masked):")
		fmt.Println(parsers.MaskedPreview(rs, 3))
		return nil
	},
}
