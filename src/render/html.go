package render

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/models"
)

// plotlyCDN is the pinned plotly.js build every page loads.
const plotlyCDN = "https://cdn.plot.ly/plotly-2.32.0.min.js"

// documentShell wraps one figure in a full page. The chart div keeps the
// plotly-graph-div class because the injected assets select on it.
const documentShell = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script src="%s"></script>
<style>html, body { margin: 0; height: 100%%; } #chart { width: 100%%; height: 100vh; }</style>
</head>
<body>
<div id="chart" class="plotly-graph-div"></div>
<script>
var figure = %s;
Plotly.newPlot("chart", figure.data, figure.layout, {responsive: true});
</script>
</body>
</html>
`

// RenderDocument produces the complete standalone HTML page for a figure,
// hover and drill assets included. json.Marshal escapes angle brackets, so
// the payload embeds safely in the inline script.
func RenderDocument(fig *Figure) (string, error) {
	if fig == nil || len(fig.Data) == 0 {
		return "", errs.New(errs.KindUnexpected, "figure has no trace")
	}
	payload, err := json.Marshal(fig)
	if err != nil {
		return "", errs.Wrap(errs.KindUnexpected, "serializing figure", err)
	}
	doc := fmt.Sprintf(documentShell, html.EscapeString(fig.Layout.Title.Text), plotlyCDN, payload)
	return InjectAssets(doc, models.ChartKind(fig.Data[0].Type)), nil
}
