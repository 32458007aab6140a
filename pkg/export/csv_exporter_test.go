package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Code", "Name", "Status"},
		Rows: []map[string]string{
			{"Code": "BTF260001", "Name": "রাহিম উদ্দিন", "Status": "PAID"},
			{"Code": "BTF260002", "Name": "Karim"},
		},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	body := string(bytes.TrimPrefix(out, utf8BOM))
	require.Contains(t, body, "Code,Name,Status\n")
	require.Contains(t, body, "BTF260001,রাহিম উদ্দিন,PAID\n")
	require.Contains(t, body, "BTF260002,Karim,\n")
}

func TestCSVExporterRenderRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{Rows: []map[string]string{{"Code": "x"}}})
	require.Error(t, err)
}
