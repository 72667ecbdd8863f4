package render

import (
	"strings"

	"github.com/username/foliomap/src/models"
)

// InjectAssets splices the hover/drill assets into a rendered page just
// before the closing body tag. A page without one gets the assets appended
// at the end instead.
func InjectAssets(doc string, kind models.ChartKind) string {
	assets := assetsFor(kind)
	if strings.Contains(doc, "</body>") {
		return strings.Replace(doc, "</body>", assets+"</body>", 1)
	}
	return doc + assets
}
