package parsers

import (
	"strings"
	"unicode/utf8"

	"github.com/username/foliomap/src/models"
)

// previewRows caps how many data rows diagnostics show.
const previewRows = 3

// RedactedPreview renders the header plus the first n data rows with every
// non-empty cell replaced by "***". Empty cells stay empty so the shape of
// the data is visible while the contents are not.
func RedactedPreview(rs *models.RecordSet, n int) string {
	return renderPreview(rs, n, func(cell string) string {
		if cell == "" {
			return ""
		}
		return "***"
	})
}

// MaskedPreview renders the header plus the first n data rows with every
// cell masked, empty or not.
func MaskedPreview(rs *models.RecordSet, n int) string {
	return renderPreview(rs, n, func(string) string { return "***" })
}

func renderPreview(rs *models.RecordSet, n int, mask func(string) string) string {
	if rs == nil || len(rs.Headers) == 0 {
		return "(no columns)"
	}
	rows := rs.Rows
	if len(rows) > n {
		rows = rows[:n]
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, rs.Headers)
	for _, row := range rows {
		line := make([]string, len(rs.Headers))
		for i, h := range rs.Headers {
			line[i] = mask(row[h])
		}
		table = append(table, line)
	}

	widths := make([]int, len(rs.Headers))
	for _, line := range table {
		for i, cell := range line {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for li, line := range table {
		if li > 0 {
			b.WriteByte('\n')
		}
		for i, cell := range line {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			b.WriteString(cell)
		}
	}
	return b.String()
}
