package render

import (
	"fmt"
	"os"

	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/models"
	"github.com/username/foliomap/src/security/validation"
)

// Writer stores rendered pages under a single output directory.
type Writer struct {
	outputDir string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// FileName maps a chart kind to its page name inside the output directory.
func FileName(kind models.ChartKind) string {
	return string(kind) + ".html"
}

// WriteDocument stores one rendered page and returns its full path. The
// output directory is created on first use.
func (w *Writer) WriteDocument(kind models.ChartKind, doc string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", errs.Wrap(errs.KindUnexpected, fmt.Sprintf("creating output directory %s", w.outputDir), err)
	}
	path, err := validation.SanitizeOutputPath(w.outputDir, FileName(kind))
	if err != nil {
		return "", errs.Wrap(errs.KindConfig, "invalid output path", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", errs.Wrap(errs.KindUnexpected, fmt.Sprintf("writing %s", path), err)
	}
	logger.L.Info("wrote chart page", "kind", string(kind), "path", path)
	return path, nil
}
