package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/username/foliomap/src/models"
)

func parseDoc(t *testing.T, doc string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRenderDocumentSunburst(t *testing.T) {
	doc, err := RenderDocument(BuildFigure(sampleSpec(models.ChartKindSunburst)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, plotlyCDN)
	assert.Contains(t, doc, `Plotly.newPlot("chart", figure.data, figure.layout, {responsive: true})`)
	assert.Contains(t, doc, "Foliomap｜Sunburst（地區 → 資產 → 個股）")

	// Drill assets come with sunbursts.
	assert.Contains(t, doc, "controls-panel")
	assert.Contains(t, doc, "parentMap")
	assert.Contains(t, doc, "路徑：根")
	assert.Contains(t, doc, "450")

	// The injection lands ahead of the closing body tag.
	body := strings.Index(doc, "</body>")
	require.Greater(t, body, 0)
	assert.Less(t, strings.Index(doc, "controls-panel"), body)
	assert.Equal(t, 1, strings.Count(doc, "</body>"))

	var chartDivs, cdnScripts int
	walkNodes(parseDoc(t, doc), func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "div":
			if attr(n, "id") == "chart" {
				chartDivs++
				assert.Equal(t, "plotly-graph-div", attr(n, "class"))
			}
		case "script":
			if attr(n, "src") == plotlyCDN {
				cdnScripts++
			}
		}
	})
	assert.Equal(t, 1, chartDivs)
	assert.Equal(t, 1, cdnScripts)
}

func TestRenderDocumentTreemapSkipsDrillAssets(t *testing.T) {
	doc, err := RenderDocument(BuildFigure(sampleSpec(models.ChartKindTreemap)))
	require.NoError(t, err)

	assert.NotContains(t, doc, "controls-panel")
	assert.NotContains(t, doc, "parentMap")
	assert.Contains(t, doc, "g.slice:hover", "hover styles apply to every kind")
	assert.Contains(t, doc, "Foliomap｜Treemap（地區 → 個股）")
}

func TestRenderDocumentEscapesPayload(t *testing.T) {
	spec := sampleSpec(models.ChartKindTreemap)
	spec.Nodes[2].Label = "</script><script>alert(1)</script>"
	spec.Title = "A & B <Charts>"

	doc, err := RenderDocument(BuildFigure(spec))
	require.NoError(t, err)

	assert.NotContains(t, doc, "<script>alert(1)")
	assert.Contains(t, doc, `<script>`)
	assert.Contains(t, doc, "A &amp; B &lt;Charts&gt;")
}

func TestRenderDocumentRejectsEmptyFigure(t *testing.T) {
	_, err := RenderDocument(nil)
	assert.Error(t, err)
	_, err = RenderDocument(&Figure{})
	assert.Error(t, err)
}

func TestInjectAssetsFallsBackToAppend(t *testing.T) {
	fragment := "<div id=\"chart\" class=\"plotly-graph-div\"></div>"
	out := InjectAssets(fragment, models.ChartKindSunburst)

	assert.True(t, strings.HasPrefix(out, fragment))
	assert.Contains(t, out, "controls-panel")
	assert.Contains(t, out, "<style>")
}

func TestInjectAssetsReplacesFirstBodyCloseOnly(t *testing.T) {
	doc := "<body>first</body><pre></body></pre>"
	out := InjectAssets(doc, models.ChartKindTreemap)

	first := strings.Index(out, "</body>")
	assert.Greater(t, first, strings.Index(out, "<style>"))
	assert.Equal(t, strings.Count(doc, "</body>"), strings.Count(out, "</body>"))
	assert.Equal(t, 1, strings.Count(out, "g.slice:hover"))
}
