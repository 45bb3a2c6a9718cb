package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Control Number", "Strain", "Grams"},
		Rows: []map[string]string{
			{"Control Number": "AAAH20260131090500001", "Strain": "Northern Lights", "Grams": "120.5"},
			{"Control Number": "AAAH20260131090500002", "Strain": "Amnesia", "Grams": "88.0"},
		},
		Summary: []SummaryLine{
			{Label: "Total records", Value: "2"},
			{Label: "Total grams", Value: "208.5"},
		},
	}
}

func TestCSVRenderIncludesRowsAndSummary(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	text := string(out)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, "Control Number,Strain,Grams", lines[0])
	assert.Contains(t, text, "Northern Lights")
	assert.Contains(t, text, "Total grams,208.5")
	// header + 2 rows + separator + 2 summary lines
	assert.Len(t, lines, 6)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Harvest Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}
