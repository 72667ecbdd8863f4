package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/models"
)

type stubFetcher struct {
	rs    *models.RecordSet
	err   error
	calls int
}

func (f *stubFetcher) FetchRecords(_ context.Context, _, _ string) (*models.RecordSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rs, nil
}

func testConfig(t *testing.T, ttl time.Duration) *config.Config {
	t.Helper()
	return &config.Config{
		GSheets: config.GSheets{SpreadsheetID: "sheet-1", Worksheet: "holdings"},
		Schema:  config.DefaultSchema(),
		Server:  config.Server{Port: 8080, CacheTTL: ttl},
		Export:  config.Export{OutputDir: filepath.Join(t.TempDir(), "outputs")},
	}
}

func worksheetFixture(rows ...[]string) *models.RecordSet {
	headers := config.DefaultSchema().Required()
	if rows == nil {
		rows = [][]string{
			{"台灣", "股票", "2330", "台積電", "1,200,000"},
			{"台灣", "ETF", "0050", "元大台灣50", "500000"},
			{"美國", "ETF", "VT", "Vanguard Total World", "800000"},
		}
	}
	rs := &models.RecordSet{Headers: headers}
	for _, cells := range rows {
		row := models.Record{}
		for i, h := range headers {
			row[h] = cells[i]
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

func TestBuildReportCachesUntilRefresh(t *testing.T) {
	fetcher := &stubFetcher{rs: worksheetFixture()}
	svc := NewReportService(testConfig(t, time.Minute), fetcher)
	ctx := context.Background()

	first, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	second, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "second read must come from cache")
	assert.Same(t, first, second)

	third, err := svc.BuildReport(ctx, models.ChartKindSunburst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls, "refresh bypasses the cache")
	assert.NotSame(t, first, third)

	_, err = svc.BuildReport(ctx, models.ChartKindTreemap, false)
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.calls, "each kind has its own cache entry")
}

func TestBuildReportZeroTTLSkipsCache(t *testing.T) {
	fetcher := &stubFetcher{rs: worksheetFixture()}
	svc := NewReportService(testConfig(t, 0), fetcher)
	ctx := context.Background()

	_, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
	require.NoError(t, err)
	_, err = svc.BuildReport(ctx, models.ChartKindSunburst, false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestBuildReportShape(t *testing.T) {
	fetcher := &stubFetcher{rs: worksheetFixture()}
	svc := NewReportService(testConfig(t, time.Minute), fetcher)

	report, err := svc.BuildReport(context.Background(), models.ChartKindSunburst, false)
	require.NoError(t, err)

	assert.Equal(t, models.ChartKindSunburst, report.Kind)
	assert.Equal(t, 3, report.Stats.RowsFetched)
	assert.Equal(t, 3, report.Stats.RowsKept)
	assert.Equal(t, 0, report.Stats.RowsDropped)
	assert.False(t, report.FetchedAt.IsZero())
	require.NotNil(t, report.Spec)
	assert.Equal(t, 2500000.0, report.Spec.Total)
	assert.Equal(t, "Foliomap｜Sunburst（地區 → 資產 → 個股）", report.Spec.Title)
}

func TestBuildReportPropagatesPipelineErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch failure", func(t *testing.T) {
		fetcher := &stubFetcher{err: errs.New(errs.KindAuth, "Google Sheets rejected the service account")}
		svc := NewReportService(testConfig(t, time.Minute), fetcher)
		_, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
		assert.Equal(t, errs.KindAuth, errs.KindOf(err))
	})

	t.Run("schema failure", func(t *testing.T) {
		rs := &models.RecordSet{Headers: []string{"代號"}, Rows: []models.Record{{"代號": "2330"}}}
		svc := NewReportService(testConfig(t, time.Minute), &stubFetcher{rs: rs})
		_, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
		assert.Equal(t, errs.KindSchema, errs.KindOf(err))
	})

	t.Run("empty worksheet", func(t *testing.T) {
		rs := &models.RecordSet{Headers: config.DefaultSchema().Required()}
		svc := NewReportService(testConfig(t, time.Minute), &stubFetcher{rs: rs})
		_, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
		assert.Equal(t, errs.KindEmptyDataset, errs.KindOf(err))
	})
}

func TestExportReportsWritesPages(t *testing.T) {
	cfg := testConfig(t, time.Minute)
	fetcher := &stubFetcher{rs: worksheetFixture()}
	svc := NewReportService(cfg, fetcher)
	ctx := context.Background()

	_, err := svc.BuildReport(ctx, models.ChartKindSunburst, false)
	require.NoError(t, err)

	result, err := svc.ExportReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls, "export never reuses cached data")

	require.Equal(t, []string{
		filepath.Join(cfg.Export.OutputDir, "sunburst.html"),
		filepath.Join(cfg.Export.OutputDir, "treemap.html"),
	}, result.Paths)
	assert.Equal(t, 3, result.Stats.RowsKept)

	sunburst, err := os.ReadFile(result.Paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(sunburst), "Plotly.newPlot")
	assert.Contains(t, string(sunburst), "controls-panel")

	treemap, err := os.ReadFile(result.Paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(treemap), "Plotly.newPlot")
	assert.NotContains(t, string(treemap), "controls-panel")
}
