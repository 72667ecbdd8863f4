// Package render turns built chart hierarchies into self-contained HTML
// pages: a Plotly figure serialized as JSON, a document shell that loads
// plotly.js from the CDN, and the hover/drill assets injected before the
// closing body tag.
package render

import (
	"github.com/username/foliomap/src/models"
)

const (
	sunburstHoverTemplate = "<b>%{label}</b><br>" +
		"名稱: %{customdata[0]}<br>" +
		"總市值(TWD): %{value:,.0f}<br>" +
		"佔比(全體): %{percentRoot:.1%}<br>" +
		"佔比(母節點): %{percentParent:.1%}" +
		"<extra></extra>"

	treemapHoverTemplate = "<b>%{label}</b><br>" +
		"名稱: %{customdata[0]}<br>" +
		"總市值(TWD): %{value:,.0f}<br>" +
		"<extra></extra>"
)

// Trace is the subset of a plotly.js sunburst/treemap trace the charts use.
// Field names follow the plotly.js schema, not Go conventions.
type Trace struct {
	Type          string     `json:"type"`
	IDs           []string   `json:"ids"`
	Labels        []string   `json:"labels"`
	Parents       []string   `json:"parents"`
	Values        []float64  `json:"values"`
	CustomData    [][]string `json:"customdata"`
	BranchValues  string     `json:"branchvalues"`
	HoverTemplate string     `json:"hovertemplate"`
}

type Title struct {
	Text string `json:"text"`
}

type Margin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

type Font struct {
	Size int `json:"size"`
}

type UniformText struct {
	MinSize int    `json:"minsize"`
	Mode    string `json:"mode"`
}

type Transition struct {
	Duration int    `json:"duration"`
	Easing   string `json:"easing"`
}

type Layout struct {
	Title       Title       `json:"title"`
	Margin      Margin      `json:"margin"`
	Font        Font        `json:"font"`
	UniformText UniformText `json:"uniformtext"`
	Transition  *Transition `json:"transition,omitempty"`
}

// Figure is a complete Plotly figure: one trace plus its layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// BuildFigure serializes a chart hierarchy into Plotly's parallel-array
// trace form. Arrays follow arena order, so parents always precede their
// children and first-occurrence ordering survives into the page.
func BuildFigure(spec *models.ChartSpec) *Figure {
	n := len(spec.Nodes)
	trace := Trace{
		Type:          string(spec.Kind),
		IDs:           make([]string, n),
		Labels:        make([]string, n),
		Parents:       make([]string, n),
		Values:        make([]float64, n),
		CustomData:    make([][]string, n),
		BranchValues:  "total",
		HoverTemplate: hoverTemplateFor(spec.Kind),
	}
	for i := range spec.Nodes {
		node := &spec.Nodes[i]
		trace.IDs[i] = node.ID
		trace.Labels[i] = node.Label
		trace.Parents[i] = node.ParentID
		trace.Values[i] = node.Value
		trace.CustomData[i] = []string{node.Name}
	}

	layout := Layout{
		Title:       Title{Text: spec.Title},
		Margin:      Margin{T: 80, L: 20, R: 20, B: 20},
		Font:        Font{Size: 14},
		UniformText: UniformText{MinSize: 10, Mode: "hide"},
	}
	if spec.Kind == models.ChartKindSunburst {
		layout.Transition = &Transition{Duration: 700, Easing: "cubic-in-out"}
	}

	return &Figure{Data: []Trace{trace}, Layout: layout}
}

func hoverTemplateFor(kind models.ChartKind) string {
	if kind == models.ChartKindTreemap {
		return treemapHoverTemplate
	}
	return sunburstHoverTemplate
}
