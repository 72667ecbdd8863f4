package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
	"github.com/username/foliomap/src/parsers"
	"github.com/username/foliomap/src/processors"
	"github.com/username/foliomap/src/render"
)

type reportServiceImpl struct {
	cfg     *config.Config
	fetcher Fetcher
	parser  parsers.HoldingsParser
	builder processors.ChartBuilder
	writer  *render.Writer
	cache   *cache.Cache
}

// NewReportService wires the pipeline stages together. Built reports are
// cached for the configured TTL so dashboard reloads do not hit the Sheets
// API every time; a TTL of zero disables the cache.
func NewReportService(cfg *config.Config, fetcher Fetcher) ReportService {
	return &reportServiceImpl{
		cfg:     cfg,
		fetcher: fetcher,
		parser:  parsers.NewHoldingsParser(),
		builder: processors.NewChartBuilder(cfg.Schema),
		writer:  render.NewWriter(cfg.Export.OutputDir),
		cache:   cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL),
	}
}

func reportCacheKey(kind models.ChartKind) string {
	return fmt.Sprintf("report:%s", kind)
}

func (s *reportServiceImpl) BuildReport(ctx context.Context, kind models.ChartKind, refresh bool) (*Report, error) {
	key := reportCacheKey(kind)
	if !refresh && s.cfg.Server.CacheTTL > 0 {
		if cached, found := s.cache.Get(key); found {
			logger.L.Debug("report served from cache", "kind", string(kind))
			return cached.(*Report), nil
		}
	}

	holdings, stats, err := s.loadHoldings(ctx)
	if err != nil {
		return nil, err
	}
	spec, err := s.builder.Build(kind, holdings)
	if err != nil {
		return nil, err
	}

	report := &Report{Kind: kind, Spec: spec, Stats: stats, FetchedAt: time.Now().UTC()}
	if s.cfg.Server.CacheTTL > 0 {
		s.cache.Set(key, report, cache.DefaultExpiration)
	}
	return report, nil
}

// ExportReports always fetches fresh data; a chart written to disk should
// never be older than the moment the command ran.
func (s *reportServiceImpl) ExportReports(ctx context.Context) (*ExportResult, error) {
	holdings, stats, err := s.loadHoldings(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Stats: stats}
	for _, kind := range models.AllChartKinds() {
		spec, err := s.builder.Build(kind, holdings)
		if err != nil {
			return nil, err
		}
		doc, err := render.RenderDocument(render.BuildFigure(spec))
		if err != nil {
			return nil, err
		}
		path, err := s.writer.WriteDocument(kind, doc)
		if err != nil {
			return nil, err
		}
		result.Paths = append(result.Paths, path)
	}

	logger.L.Info("export finished",
		"pages", len(result.Paths),
		"rowsKept", stats.RowsKept,
		"totalValue", stats.TotalValue.String(),
	)
	return result, nil
}

func (s *reportServiceImpl) loadHoldings(ctx context.Context) ([]models.Holding, parsers.CleanStats, error) {
	rs, err := s.fetcher.FetchRecords(ctx, s.cfg.GSheets.SpreadsheetID, s.cfg.GSheets.Worksheet)
	if err != nil {
		return nil, parsers.CleanStats{}, err
	}
	return s.parser.Parse(rs, s.cfg.Schema)
}
