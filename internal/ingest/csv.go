// Package ingest turns uploaded CSV files into review batches. The format
// contract: a header row containing "title" and "review" columns, one review
// per row. Rows missing either value are dropped, not rejected.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNoValidRows means every data row was blank in a required column.
	ErrNoValidRows = errors.New("no valid data found after removing empty rows")
)

// RequiredColumns are the header names a review CSV must carry.
var RequiredColumns = []string{"title", "review"}

// MissingColumnsError reports which required headers were absent.
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %v", e.Missing)
}

// Row is one usable review extracted from the CSV.
type Row struct {
	Title  string
	Review string
}

// Batch is the outcome of parsing one upload. TotalRows counts data rows as
// uploaded; CleanedRows counts the rows that survived blank-value dropping.
type Batch struct {
	ID          string
	Rows        []Row
	TotalRows   int
	CleanedRows int
}

// ParseCSV reads a review CSV and assigns the batch a fresh ID. Ragged rows
// are tolerated; a short row simply has its missing columns treated as blank.
func ParseCSV(r io.Reader) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV file")
	}
	if err != nil {
		return nil, err
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		found := make([]string, len(header))
		for i, name := range header {
			found[i] = strings.TrimSpace(name)
		}
		return nil, &MissingColumnsError{Missing: missing, Found: found}
	}

	titleIdx, reviewIdx := idx["title"], idx["review"]
	batch := &Batch{ID: uuid.NewString()}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv errors already carry line and column context; the handler
			// adds the user-facing prefix.
			return nil, err
		}
		batch.TotalRows++

		title := field(record, titleIdx)
		review := field(record, reviewIdx)
		if title == "" || review == "" {
			continue
		}
		batch.Rows = append(batch.Rows, Row{Title: title, Review: review})
	}
	batch.CleanedRows = len(batch.Rows)

	if batch.CleanedRows == 0 {
		return nil, ErrNoValidRows
	}
	return batch, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
