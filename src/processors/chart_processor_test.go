package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/models"
)

func holding(region, class, symbol, name string, value float64) models.Holding {
	return models.Holding{
		Region:      region,
		AssetClass:  class,
		Symbol:      symbol,
		Name:        name,
		MarketValue: decimal.NewFromFloat(value),
	}
}

func assertChildrenSumToParents(t *testing.T, spec *models.ChartSpec) {
	t.Helper()
	for i := range spec.Nodes {
		n := &spec.Nodes[i]
		if n.Leaf {
			assert.Empty(t, n.Children, "leaf %s must not have children", n.ID)
			continue
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += spec.Nodes[c].Value
		}
		assert.InDelta(t, n.Value, sum, 1e-9, "node %s", n.ID)
	}
}

func TestBuildAggregatesByRegion(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("EU", "Equity", "X", "", 100),
		holding("EU", "Equity", "Y", "", 50),
		holding("US", "Equity", "Z", "", 25),
	}

	spec, err := builder.Build(models.ChartKindTreemap, holdings)
	require.NoError(t, err)

	eu, ok := spec.NodeByID("EU")
	require.True(t, ok)
	us, ok := spec.NodeByID("US")
	require.True(t, ok)
	assert.Equal(t, 150.0, eu.Value)
	assert.Equal(t, 25.0, us.Value)
	assert.Equal(t, 175.0, spec.Total)
	assertChildrenSumToParents(t, spec)
}

func TestBuildSunburstHierarchy(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("台灣", "股票", "2330", "台積電", 1200000),
		holding("台灣", "股票", "2412", "中華電", 300000),
		holding("台灣", "ETF", "0050", "元大台灣50", 500000),
		holding("美國", "ETF", "VT", "Vanguard Total World", 800000),
	}

	spec, err := builder.Build(models.ChartKindSunburst, holdings)
	require.NoError(t, err)
	assert.Equal(t, "Foliomap｜Sunburst（地區 → 資產 → 個股）", spec.Title)

	leaf, ok := spec.NodeByID("台灣/股票/2330 台積電")
	require.True(t, ok)
	assert.True(t, leaf.Leaf)
	assert.Equal(t, "2330 台積電", leaf.Label)
	assert.Equal(t, "台積電", leaf.Name)
	assert.Equal(t, "台灣/股票", leaf.ParentID)
	assert.Equal(t, "股票", spec.Nodes[leaf.Parent].Label)

	mid, ok := spec.NodeByID("台灣/股票")
	require.True(t, ok)
	assert.False(t, mid.Leaf)
	assert.Empty(t, mid.Name)
	assert.Equal(t, 1500000.0, mid.Value)

	root, ok := spec.NodeByID("台灣")
	require.True(t, ok)
	assert.Equal(t, -1, root.Parent)
	assert.Equal(t, "", root.ParentID)
	assert.Equal(t, 2000000.0, root.Value)

	assert.Equal(t, 2800000.0, spec.Total)
	assertChildrenSumToParents(t, spec)
}

func TestBuildTreemapSkipsAssetClassLevel(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("台灣", "股票", "2330", "台積電", 100),
		holding("美國", "ETF", "VT", "", 50),
	}

	spec, err := builder.Build(models.ChartKindTreemap, holdings)
	require.NoError(t, err)
	assert.Equal(t, "Foliomap｜Treemap（地區 → 個股）", spec.Title)

	leaf, ok := spec.NodeByID("台灣/2330 台積電")
	require.True(t, ok)
	assert.True(t, leaf.Leaf)
	assert.Equal(t, "台灣", leaf.ParentID)

	_, ok = spec.NodeByID("台灣/股票")
	assert.False(t, ok, "treemaps group directly from region to holding")

	for _, ri := range spec.Roots() {
		for _, ci := range spec.Nodes[ri].Children {
			assert.True(t, spec.Nodes[ci].Leaf)
		}
	}
}

func TestBuildWithoutAssetClassSchema(t *testing.T) {
	schema := config.DefaultSchema()
	schema.AssetClassColumn = ""
	builder := NewChartBuilder(schema)

	spec, err := builder.Build(models.ChartKindSunburst, []models.Holding{
		holding("US", "ignored", "VT", "", 50),
	})
	require.NoError(t, err)
	assert.Equal(t, "Foliomap｜Sunburst（地區 → 個股）", spec.Title)

	leaf, ok := spec.NodeByID("US/VT")
	require.True(t, ok)
	assert.Equal(t, "US", leaf.ParentID)
}

func TestBuildFillsUnknownSegments(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())

	spec, err := builder.Build(models.ChartKindSunburst, []models.Holding{
		holding("", "  ", "VT", "Vanguard", 10),
	})
	require.NoError(t, err)

	leaf, ok := spec.NodeByID("Unknown/Unknown/VT Vanguard")
	require.True(t, ok)
	assert.True(t, leaf.Leaf)
	assert.Equal(t, 10.0, leaf.Value)
}

func TestBuildKeepsFirstOccurrenceOrder(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("APAC", "Equity", "A", "", 1),
		holding("EU", "Equity", "B", "", 2),
		holding("APAC", "Bond", "C", "", 3),
	}

	spec, err := builder.Build(models.ChartKindSunburst, holdings)
	require.NoError(t, err)

	roots := spec.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "APAC", spec.Nodes[roots[0]].Label)
	assert.Equal(t, "EU", spec.Nodes[roots[1]].Label)
}

func TestBuildAccumulatesDuplicateLeaves(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("US", "ETF", "VT", "Vanguard", 100),
		holding("US", "ETF", "VT", "Vanguard", 25),
	}

	spec, err := builder.Build(models.ChartKindSunburst, holdings)
	require.NoError(t, err)
	require.Len(t, spec.Nodes, 3)

	leaf, ok := spec.NodeByID("US/ETF/VT Vanguard")
	require.True(t, ok)
	assert.Equal(t, 125.0, leaf.Value)
	assert.Equal(t, 125.0, spec.Total)
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	holdings := []models.Holding{
		holding("台灣", "股票", "2330", "台積電", 1200000),
		holding("美國", "ETF", "VT", "Vanguard Total World", 800000),
		holding("台灣", "ETF", "0050", "元大台灣50", 500000),
	}

	first, err := builder.Build(models.ChartKindSunburst, holdings)
	require.NoError(t, err)
	second, err := builder.Build(models.ChartKindSunburst, holdings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildRejectsEmptyHoldings(t *testing.T) {
	builder := NewChartBuilder(config.DefaultSchema())
	for _, kind := range models.AllChartKinds() {
		_, err := builder.Build(kind, nil)
		assert.Equal(t, errs.KindEmptyDataset, errs.KindOf(err), "kind %s", kind)
	}
}
