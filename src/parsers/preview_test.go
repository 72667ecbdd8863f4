package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/models"
)

func TestRedactedPreview(t *testing.T) {
	schema := config.DefaultSchema()
	rs := newRecordSet(schema.Required(),
		[]string{"台灣", "股票", "2330", "台積電", "1,234,567"},
		[]string{"美國", "", "VT", "", "890"},
		[]string{"歐洲", "ETF", "VWCE", "FTSE All-World", "456"},
		[]string{"日本", "股票", "7203", "Toyota", "123"},
	)

	preview := RedactedPreview(rs, 3)
	lines := strings.Split(preview, "\n")
	require.Len(t, lines, 4, "header plus at most three data rows")

	for _, h := range rs.Headers {
		assert.Contains(t, lines[0], h)
	}
	assert.Contains(t, preview, "***")
	assert.NotContains(t, preview, "2330")
	assert.NotContains(t, preview, "台積電")
	assert.NotContains(t, preview, "1,234,567")
	assert.NotContains(t, preview, "123", "rows past the cap are not rendered at all")

	// The second row has two empty cells, which stay empty rather than masked.
	assert.Equal(t, 5, strings.Count(lines[1], "***"))
	assert.Equal(t, 3, strings.Count(lines[2], "***"))
	assert.Equal(t, 5, strings.Count(lines[3], "***"))
}

func TestMaskedPreviewMasksEmptyCellsToo(t *testing.T) {
	schema := config.DefaultSchema()
	rs := newRecordSet(schema.Required(),
		[]string{"US", "", "VT", "", "890"},
	)

	preview := MaskedPreview(rs, 3)
	lines := strings.Split(preview, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, len(rs.Headers), strings.Count(lines[1], "***"))
}

func TestPreviewDegenerateInputs(t *testing.T) {
	assert.Equal(t, "(no columns)", RedactedPreview(nil, 3))
	assert.Equal(t, "(no columns)", RedactedPreview(&models.RecordSet{}, 3))

	headersOnly := newRecordSet([]string{"a", "b"})
	preview := RedactedPreview(headersOnly, 3)
	assert.Equal(t, 1, len(strings.Split(preview, "\n")))
	assert.Contains(t, preview, "a")
}
