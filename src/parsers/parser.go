package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
)

type holdingsParserImpl struct{}

// NewHoldingsParser returns the standard schema-driven parser.
func NewHoldingsParser() HoldingsParser {
	return &holdingsParserImpl{}
}

func (p *holdingsParserImpl) Parse(rs *models.RecordSet, schema config.Schema) ([]models.Holding, CleanStats, error) {
	var stats CleanStats
	if rs == nil {
		rs = &models.RecordSet{}
	}

	required := schema.Required()
	if missing := missingColumns(rs.Headers, required); len(missing) > 0 {
		return nil, stats, &errs.Error{
			Kind:    errs.KindSchema,
			Message: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
			Missing: missing,
			Columns: rs.Headers,
			Preview: RedactedPreview(rs, previewRows),
		}
	}
	if rs.IsEmpty() {
		return nil, stats, &errs.Error{
			Kind:    errs.KindEmptyDataset,
			Message: "Worksheet has headers but no data rows.",
			Columns: rs.Headers,
			Preview: RedactedPreview(rs, previewRows),
		}
	}

	stats.RowsFetched = len(rs.Rows)
	holdings := make([]models.Holding, 0, len(rs.Rows))
	total := decimal.Zero
	parsed := 0
	for _, row := range rs.Rows {
		value, ok := coerceValue(row[schema.ValueColumn])
		if !ok {
			continue
		}
		parsed++
		if !value.IsPositive() {
			continue
		}
		h := models.Holding{
			Region:      row[schema.RegionColumn],
			Symbol:      row[schema.SymbolColumn],
			Name:        row[schema.NameColumn],
			MarketValue: value,
		}
		if schema.HasAssetClass() {
			h.AssetClass = row[schema.AssetClassColumn]
		}
		holdings = append(holdings, h)
		total = total.Add(value)
	}
	stats.RowsKept = len(holdings)
	stats.RowsDropped = stats.RowsFetched - stats.RowsKept
	stats.TotalValue = total

	if parsed == 0 {
		return nil, stats, &errs.Error{
			Kind:    errs.KindSchema,
			Message: fmt.Sprintf("Column %s has no valid numeric values.", schema.ValueColumn),
			Columns: rs.Headers,
			Preview: RedactedPreview(rs, previewRows),
		}
	}
	if len(holdings) == 0 {
		return nil, stats, &errs.Error{
			Kind:    errs.KindEmptyDataset,
			Message: fmt.Sprintf("No rows with %s > 0.", schema.ValueColumn),
			Columns: rs.Headers,
			Preview: RedactedPreview(rs, previewRows),
		}
	}

	logger.L.Info("cleaned worksheet rows",
		"fetched", stats.RowsFetched,
		"kept", stats.RowsKept,
		"dropped", stats.RowsDropped,
		"totalValue", stats.TotalValue.String(),
	)
	return holdings, stats, nil
}

// missingColumns preserves the order of required, not of headers.
func missingColumns(headers, required []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// coerceValue parses a raw cell into a decimal after stripping thousands
// separators. Empty and unparseable cells report ok=false.
func coerceValue(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
