package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"sample_id", "data_type", "qc_status"},
		Rows: []map[string]string{
			{"qc_status": "PASS", "sample_id": "OS-001", "data_type": "RNA-seq"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "sample_id,data_type,qc_status", lines[0])
	assert.Equal(t, "OS-001,RNA-seq,PASS", lines[1])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(Dataset{
		Title: "FastQC Report",
		Meta: []KeyValue{
			{Key: "Sample", Value: "OS-001"},
			{Key: "Overall status", Value: "PASS"},
		},
		Headers: []string{"module", "status"},
		Rows: []map[string]string{
			{"module": "Per base sequence quality", "status": "PASS"},
			{"module": "Adapter Content", "status": "WARN"},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{Title: "empty"})
	require.Error(t, err)
}
