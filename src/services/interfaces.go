package services

import (
	"context"
	"time"

	"github.com/username/foliomap/src/models"
	"github.com/username/foliomap/src/parsers"
)

// Fetcher retrieves the raw worksheet contents. The gsheets client is the
// production implementation; tests substitute their own.
type Fetcher interface {
	FetchRecords(ctx context.Context, spreadsheetID, worksheet string) (*models.RecordSet, error)
}

// Report is one built chart plus the cleaning stats behind it.
type Report struct {
	Kind      models.ChartKind
	Spec      *models.ChartSpec
	Stats     parsers.CleanStats
	FetchedAt time.Time
}

// ExportResult lists what one export run produced.
type ExportResult struct {
	Paths []string
	Stats parsers.CleanStats
}

// ReportService runs the fetch, clean and build pipeline.
type ReportService interface {
	// BuildReport returns the chart for one kind, served from cache unless
	// refresh is set or the cached entry expired.
	BuildReport(ctx context.Context, kind models.ChartKind, refresh bool) (*Report, error)
	// ExportReports renders every chart kind into the output directory.
	ExportReports(ctx context.Context) (*ExportResult, error)
}

// DeliveryService sends a finished export to the configured recipient.
type DeliveryService interface {
	SendReport(ctx context.Context, subject string, htmlPaths []string) error
}
