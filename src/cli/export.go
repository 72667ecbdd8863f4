package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/foliomap/src/gsheets"
	"github.com/username/foliomap/src/services"
	"github.com/username/foliomap/src/utils"
)

var (
	exportOutputDir string
	exportDeliver   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the charts to standalone HTML files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if exportOutputDir != "" {
			cfg.Export.OutputDir = exportOutputDir
		}

		client, err := gsheets.NewClient(cfg.GSheets.ServiceAccountJSONPath)
		if err != nil {
			return err
		}
		svc := services.NewReportService(cfg, client)
		result, err := svc.ExportReports(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("✅ 圖表已生成：%s\n", strings.Join(result.Paths, "、"))
		fmt.Printf("Rows kept: %s of %s fetched\n",
			utils.FormatCount(result.Stats.RowsKept),
			utils.FormatCount(result.Stats.RowsFetched))
		fmt.Printf("Total value (TWD): %s\n", utils.FormatTWD(result.Stats.TotalValue.InexactFloat64()))

		if exportDeliver {
			delivery := services.NewDeliveryService(cfg)
			subject := fmt.Sprintf("Foliomap charts %s", time.Now().Format("2006-01-02"))
			if err := delivery.SendReport(cmd.Context(), subject, result.Paths); err != nil {
				return err
			}
			fmt.Println("Report delivered.")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "directory for the generated HTML files (overrides config)")
	exportCmd.Flags().BoolVar(&exportDeliver, "deliver", false, "email the generated charts with the configured delivery provider")
}
