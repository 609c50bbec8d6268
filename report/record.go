package report

import (
	"github.com/rs/xid"

	"github.com/sarchlab/scoreboard/insts"
)

// Record is the stored result of one instruction in one run.
type Record struct {
	RunID string
	Seq   int
	Text  string
	Unit  string

	Issue        uint64
	ReadOperands uint64
	ExecComplete uint64
	WriteResult  uint64
}

// NewRunID returns a unique identifier for a run.
func NewRunID() string {
	return xid.New().String()
}

// RecordsOf converts a simulated program into records of the given run.
func RecordsOf(runID string, program []*insts.Instruction) []Record {
	records := make([]Record, 0, len(program))
	for i, inst := range program {
		records = append(records, Record{
			RunID:        runID,
			Seq:          i,
			Text:         inst.Text,
			Unit:         inst.Unit,
			Issue:        inst.Issue(),
			ReadOperands: inst.ReadOperands(),
			ExecComplete: inst.ExecComplete(),
			WriteResult:  inst.WriteResult(),
		})
	}
	return records
}

// Writer stores records.
type Writer interface {
	Write(r Record) error
	Flush() error
	Close() error
}

// WriteAll writes every record and flushes the writer.
func WriteAll(w Writer, records []Record) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}
