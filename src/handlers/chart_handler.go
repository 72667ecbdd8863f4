package handlers

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
	"github.com/username/foliomap/src/render"
	"github.com/username/foliomap/src/services"
	"github.com/username/foliomap/src/utils"
)

// ChartHandler serves the dashboard pages and the chart data API.
type ChartHandler struct {
	reportService services.ReportService
}

func NewChartHandler(reportService services.ReportService) *ChartHandler {
	return &ChartHandler{reportService: reportService}
}

// statusForKind maps pipeline failure kinds onto API status codes. Data
// problems in the worksheet are the caller's to fix (422); upstream Google
// failures surface as bad gateway.
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindAuth, errs.KindRemoteService:
		return http.StatusBadGateway
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindSchema, errs.KindEmptyDataset:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func wantsRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "1"
}

// HandleChartData serves the Plotly figure for one chart kind as JSON.
func (h *ChartHandler) HandleChartData(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseChartKind(r.PathValue("kind"))
	if !ok {
		utils.SendJSONError(w, fmt.Sprintf("unknown chart kind %q", r.PathValue("kind")), http.StatusNotFound)
		return
	}

	report, err := h.reportService.BuildReport(r.Context(), kind, wantsRefresh(r))
	if err != nil {
		logger.L.Error("building chart data failed", "kind", string(kind), "error", err)
		utils.SendJSONError(w, errs.FormatDiagnostic(err), statusForKind(errs.KindOf(err)))
		return
	}

	figure := render.BuildFigure(report.Spec)
	if etag, err := utils.GenerateETag(figure); err == nil {
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	utils.SendJSON(w, http.StatusOK, figure)
}

// HandleChartPage serves one chart as a complete interactive page.
// Pipeline failures render as an inline diagnostic panel rather than a bare
// status code, so the operator sees the same message the CLI would print.
func (h *ChartHandler) HandleChartPage(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseChartKind(r.PathValue("kind"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	report, err := h.reportService.BuildReport(r.Context(), kind, wantsRefresh(r))
	if err != nil {
		logger.L.Error("building chart page failed", "kind", string(kind), "error", err)
		writeErrorPage(w, err)
		return
	}
	doc, err := render.RenderDocument(render.BuildFigure(report.Spec))
	if err != nil {
		logger.L.Error("rendering chart page failed", "kind", string(kind), "error", err)
		writeErrorPage(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc)
}

// HandleIndexPage serves the dashboard landing page with portfolio totals
// and links to both charts.
func (h *ChartHandler) HandleIndexPage(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.BuildReport(r.Context(), models.ChartKindSunburst, wantsRefresh(r))
	if err != nil {
		logger.L.Error("building index page failed", "error", err)
		writeErrorPage(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPageShell,
		utils.FormatTWD(report.Spec.Total),
		utils.FormatCount(report.Stats.RowsKept),
		report.FetchedAt.Format(time.RFC3339),
	)
}

// HandleHealth answers liveness probes.
func (h *ChartHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeErrorPage(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, errorPageShell, html.EscapeString(errs.FormatDiagnostic(err)))
}

const indexPageShell = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Foliomap</title>
<style>
body { font-family: "Segoe UI", "Noto Sans TC", sans-serif; background: #0f141e; color: #fff; margin: 0; padding: 48px; }
.panel { max-width: 720px; margin: 0 auto; background: rgba(255, 255, 255, 0.06); border-radius: 12px; padding: 24px 32px; }
.panel h1 { margin-top: 0; }
.panel a { color: #4a6cf0; }
.stats { color: rgba(255, 255, 255, 0.8); }
</style>
</head>
<body>
<div class="panel">
<h1>Foliomap</h1>
<p class="stats">總市值(TWD)：%s ｜ 持倉筆數：%s ｜ 資料時間：%s</p>
<ul>
<li><a href="/chart/sunburst">Sunburst（地區 → 資產 → 個股）</a></li>
<li><a href="/chart/treemap">Treemap（地區 → 個股）</a></li>
</ul>
<p><a href="/?refresh=1">重新整理資料</a></p>
</div>
</body>
</html>
`

const errorPageShell = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Foliomap</title>
<style>
body { font-family: "Segoe UI", "Noto Sans TC", sans-serif; background: #0f141e; color: #fff; margin: 0; padding: 48px; }
.error-panel { max-width: 720px; margin: 0 auto; background: rgba(255, 255, 255, 0.06); border-radius: 12px; padding: 24px 32px; }
.error-panel pre { white-space: pre-wrap; background: rgba(0, 0, 0, 0.35); padding: 16px; border-radius: 8px; }
.error-panel a { color: #4a6cf0; }
</style>
</head>
<body>
<div class="error-panel">
<h1>圖表目前無法產生</h1>
<pre>%s</pre>
<p><a href="/">返回首頁</a></p>
</div>
</body>
</html>
`
