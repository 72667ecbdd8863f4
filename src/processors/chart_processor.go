package processors

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
)

// unknownSegment fills empty grouping cells so no holding drops out of the
// hierarchy.
const unknownSegment = "Unknown"

type chartBuilderImpl struct {
	schema config.Schema
}

// NewChartBuilder returns a builder for the given worksheet schema. The
// schema decides whether sunbursts get the asset-class level.
func NewChartBuilder(schema config.Schema) ChartBuilder {
	return &chartBuilderImpl{schema: schema}
}

func (b *chartBuilderImpl) Build(kind models.ChartKind, holdings []models.Holding) (*models.ChartSpec, error) {
	if len(holdings) == 0 {
		return nil, &errs.Error{
			Kind:    errs.KindEmptyDataset,
			Message: "No holdings to chart.",
		}
	}

	spec := &models.ChartSpec{Kind: kind, Title: b.title(kind)}
	index := make(map[string]int)
	var sums []decimal.Decimal // parallel to spec.Nodes

	ensure := func(id, label, parentID string, parent int, leaf bool, name string) int {
		if i, ok := index[id]; ok {
			return i
		}
		i := len(spec.Nodes)
		spec.Nodes = append(spec.Nodes, models.ChartNode{
			ID:       id,
			Label:    label,
			ParentID: parentID,
			Parent:   parent,
			Leaf:     leaf,
			Name:     name,
		})
		sums = append(sums, decimal.Decimal{})
		index[id] = i
		if parent >= 0 {
			spec.Nodes[parent].Children = append(spec.Nodes[parent].Children, i)
		}
		return i
	}

	total := decimal.Zero
	for _, h := range holdings {
		segments := b.path(kind, h)
		parent := -1
		parentID := ""
		for depth, segment := range segments {
			id := segment
			if parentID != "" {
				id = parentID + "/" + segment
			}
			leaf := depth == len(segments)-1
			name := ""
			if leaf {
				name = strings.TrimSpace(h.Name)
			}
			i := ensure(id, segment, parentID, parent, leaf, name)
			sums[i] = sums[i].Add(h.MarketValue)
			parent = i
			parentID = id
		}
		total = total.Add(h.MarketValue)
	}

	for i := range spec.Nodes {
		spec.Nodes[i].Value = sums[i].InexactFloat64()
	}
	spec.Total = total.InexactFloat64()

	logger.L.Debug("built chart hierarchy",
		"kind", string(kind),
		"nodes", len(spec.Nodes),
		"holdings", len(holdings),
	)
	return spec, nil
}

// path lists the grouping segments for one holding, outermost first. The
// treemap intentionally skips the asset-class level even when the schema
// declares one.
func (b *chartBuilderImpl) path(kind models.ChartKind, h models.Holding) []string {
	segments := make([]string, 0, 3)
	segments = append(segments, orUnknown(h.Region))
	if kind == models.ChartKindSunburst && b.schema.HasAssetClass() {
		segments = append(segments, orUnknown(h.AssetClass))
	}
	segments = append(segments, h.DisplayLabel())
	return segments
}

func (b *chartBuilderImpl) title(kind models.ChartKind) string {
	switch kind {
	case models.ChartKindTreemap:
		return "Foliomap｜Treemap（地區 → 個股）"
	default:
		if b.schema.HasAssetClass() {
			return "Foliomap｜Sunburst（地區 → 資產 → 個股）"
		}
		return "Foliomap｜Sunburst（地區 → 個股）"
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownSegment
	}
	return s
}
