package processors

import (
	"github.com/username/foliomap/src/models"
)

// ChartBuilder aggregates cleaned holdings into a chart hierarchy. One
// builder serves every chart kind; the kind picks the grouping path.
type ChartBuilder interface {
	Build(kind models.ChartKind, holdings []models.Holding) (*models.ChartSpec, error)
}
