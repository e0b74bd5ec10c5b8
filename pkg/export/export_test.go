package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type csvRow struct {
	ID   string `csv:"id"`
	Room string `csv:"room_id"`
	Day  int    `csv:"weekday"`
}

func TestCSVExporterRenderAndParse(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render([]csvRow{{ID: "a", Room: "R1", Day: 2}, {ID: "b", Day: 5}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,room_id,weekday", lines[0])
	assert.Equal(t, "a,R1,2", lines[1])

	var parsed []csvRow
	require.NoError(t, exporter.Parse(bytes.NewReader(out), &parsed))
	assert.Equal(t, []csvRow{{ID: "a", Room: "R1", Day: 2}, {ID: "b", Day: 5}}, parsed)
}

func TestCSVExporterParseRejectsBadNumbers(t *testing.T) {
	var parsed []csvRow
	err := NewCSVExporter().Parse(strings.NewReader("id,room_id,weekday\na,R1,monday\n"), &parsed)
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Day", "Time"},
		Rows: []map[string]string{
			{"Day": "Monday", "Time": "08:00-09:00"},
			{"Day": "Tuesday", "Time": "10:00-11:00"},
		},
	}
	out, err := NewPDFExporter().Render(data, "Weekly timetable", "Day")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, "", "")
	assert.Error(t, err)
}
