package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVWriter stores records in a CSV file.
type CSVWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	records    []Record
	bufferSize int
}

// NewCSVWriter creates the CSV file and writes its header. An existing file
// is overwritten.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create csv file: %w", err)
	}

	w := &CSVWriter{
		path:       path,
		file:       file,
		csv:        csv.NewWriter(file),
		bufferSize: 1000,
	}

	err = w.csv.Write([]string{
		"RunID", "Seq", "Instruction", "Unit",
		"Issue", "ReadOperands", "ExecComplete", "WriteResult",
	})
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	return w, nil
}

// Write buffers a record.
func (w *CSVWriter) Write(r Record) error {
	w.records = append(w.records, r)
	if len(w.records) >= w.bufferSize {
		return w.Flush()
	}
	return nil
}

// Flush writes the buffered records to the file.
func (w *CSVWriter) Flush() error {
	for _, r := range w.records {
		err := w.csv.Write([]string{
			r.RunID,
			strconv.Itoa(r.Seq),
			r.Text,
			r.Unit,
			strconv.FormatUint(r.Issue, 10),
			strconv.FormatUint(r.ReadOperands, 10),
			strconv.FormatUint(r.ExecComplete, 10),
			strconv.FormatUint(r.WriteResult, 10),
		})
		if err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.records = nil
	w.csv.Flush()

	return w.csv.Error()
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}
