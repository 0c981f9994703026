package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "Percent"},
		Rows: []map[string]string{
			{"Student": "Ada", "Percent": "90.91%"},
			{"Student": "Grace"},
		},
	}
}

func TestCSVRenderKeepsHeaderOrder(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "Student,Percent\nAda,90.91%\nGrace,\n", string(data))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleDataset(), ReportMeta{
		Title:       "UFLI Progress Report",
		Subtitle:    "Ada (G2)",
		GeneratedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, ReportMeta{})
	assert.Error(t, err)
}
