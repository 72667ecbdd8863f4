package parsers

import (
	"github.com/shopspring/decimal"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/models"
)

// CleanStats summarizes one cleaning pass for logs and CLI summaries.
type CleanStats struct {
	RowsFetched int
	RowsKept    int
	RowsDropped int
	TotalValue  decimal.Decimal
}

// HoldingsParser validates a raw worksheet RecordSet against the declared
// schema and turns it into cleaned holdings. Every returned Holding has a
// strictly positive market value; rows that fail to coerce are dropped and
// counted, not fatal. Schema-level problems (missing columns, a value
// column with no numbers at all, nothing surviving the clean) come back as
// classified errors carrying a redacted preview.
type HoldingsParser interface {
	Parse(rs *models.RecordSet, schema config.Schema) ([]models.Holding, CleanStats, error)
}
