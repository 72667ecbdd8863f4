package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one worksheet row keyed by header name. Values stay raw strings
// until the cleaning stage decides what they mean.
type Record map[string]string

// RecordSet is the raw result of one worksheet fetch: the header row in
// worksheet order plus every data row beneath it.
type RecordSet struct {
	Headers []string
	Rows    []Record
}

// IsEmpty reports whether the worksheet had no data rows.
func (rs *RecordSet) IsEmpty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// Holding is one cleaned row of portfolio data. MarketValue is strictly
// positive once a Holding exists; rows that fail that bar never become one.
type Holding struct {
	Region      string
	AssetClass  string
	Symbol      string
	Name        string
	MarketValue decimal.Decimal
}

// DisplayLabel is the leaf label used in charts: the symbol, suffixed with
// the human-readable name when one is present.
func (h Holding) DisplayLabel() string {
	symbol := strings.TrimSpace(h.Symbol)
	name := strings.TrimSpace(h.Name)
	if name == "" {
		return symbol
	}
	return symbol + " " + name
}

// ChartKind selects which hierarchy a chart is built over.
type ChartKind string

const (
	ChartKindSunburst ChartKind = "sunburst"
	ChartKindTreemap  ChartKind = "treemap"
)

// AllChartKinds lists every kind the exporter produces, in output order.
func AllChartKinds() []ChartKind {
	return []ChartKind{ChartKindSunburst, ChartKindTreemap}
}

// ParseChartKind maps a user-supplied string onto a ChartKind.
func ParseChartKind(s string) (ChartKind, bool) {
	switch ChartKind(strings.ToLower(strings.TrimSpace(s))) {
	case ChartKindSunburst:
		return ChartKindSunburst, true
	case ChartKindTreemap:
		return ChartKindTreemap, true
	default:
		return "", false
	}
}

// ChartNode is one node of a chart hierarchy. The node arena lives in
// ChartSpec.Nodes; Parent is an index into that slice (-1 for root-level
// nodes) and Children holds child indexes in first-occurrence order. IDs are
// the grouping-path components joined with "/", so they are unique within a
// spec and stable across rebuilds of the same data.
type ChartNode struct {
	ID       string
	Label    string
	ParentID string
	Parent   int
	Children []int
	Value    float64
	Name     string
	Leaf     bool
}

// ChartSpec is the built hierarchy handed to the renderer: every leaf value
// is positive, every internal node's value is the sum of its children, and
// node order follows first occurrence of each grouping key in the input.
type ChartSpec struct {
	Kind  ChartKind
	Title string
	Nodes []ChartNode
	Total float64
}

// Roots returns the indexes of the top-level nodes in arena order.
func (s *ChartSpec) Roots() []int {
	var roots []int
	for i := range s.Nodes {
		if s.Nodes[i].Parent < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// NodeByID returns the node with the given ID, if present.
func (s *ChartSpec) NodeByID(id string) (*ChartNode, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}
