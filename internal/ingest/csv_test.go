package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reelsense/sentiment-api/internal/ingest"
)

func TestParseCSV(t *testing.T) {
	in := strings.Join([]string{
		"title,review",
		"Arrival,Quietly devastating.",
		"Heat,\"Pacino and De Niro, finally face to face.\"",
	}, "\n")

	batch, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.NotEmpty(t, batch.ID)
	require.Equal(t, 2, batch.TotalRows)
	require.Equal(t, 2, batch.CleanedRows)
	require.Equal(t, ingest.Row{Title: "Arrival", Review: "Quietly devastating."}, batch.Rows[0])
	require.Equal(t, "Heat", batch.Rows[1].Title)
}

func TestParseCSVExtraColumnsAndOrder(t *testing.T) {
	in := strings.Join([]string{
		"year,review,title",
		"2016,Loved it,Arrival",
	}, "\n")

	batch, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []ingest.Row{{Title: "Arrival", Review: "Loved it"}}, batch.Rows)
}

func TestParseCSVDropsBlankRows(t *testing.T) {
	in := strings.Join([]string{
		"title,review",
		"Arrival,Loved it",
		"Arrival,",
		",Orphan review",
		"Heat",
		"Heat,Great heist scene",
	}, "\n")

	batch, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 5, batch.TotalRows)
	require.Equal(t, 2, batch.CleanedRows)
	require.Len(t, batch.Rows, 2)
}

func TestParseCSVMissingColumns(t *testing.T) {
	in := "name,text\nArrival,Loved it\n"

	_, err := ingest.ParseCSV(strings.NewReader(in))
	var missing *ingest.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	require.ElementsMatch(t, []string{"title", "review"}, missing.Missing)
	require.Equal(t, []string{"name", "text"}, missing.Found)
}

func TestParseCSVAllRowsBlank(t *testing.T) {
	in := "title,review\nArrival,\n,Orphan\n"

	_, err := ingest.ParseCSV(strings.NewReader(in))
	require.ErrorIs(t, err, ingest.ErrNoValidRows)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader(""))
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty CSV file")
}

func TestParseCSVMalformedQuoting(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader("title,review\n\"broken\n"))
	require.Error(t, err)
	// raw csv error, no package prefix: the HTTP layer owns the user message
	require.NotContains(t, err.Error(), "CSV file")
}

func TestParseCSVFreshBatchIDs(t *testing.T) {
	in := "title,review\nArrival,Loved it\n"

	a, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	b, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}
