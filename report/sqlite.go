package report

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteWriter stores records in a SQLite database. Records of several runs
// can share one database, distinguished by run ID.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	records   []Record
	batchSize int
}

// NewSQLiteWriter opens or creates the database and prepares the
// instruction table.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	w := &SQLiteWriter{
		DB:        db,
		batchSize: 100000,
	}

	if err := w.createTable(); err != nil {
		_ = db.Close()
		return nil, err
	}

	stmt, err := db.Prepare(`INSERT INTO instruction VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	w.statement = stmt

	return w, nil
}

func (w *SQLiteWriter) createTable() error {
	_, err := w.Exec(`
		CREATE TABLE IF NOT EXISTS instruction
		(
			run_id        VARCHAR(200) NOT NULL,
			seq           INTEGER      NOT NULL,
			text          VARCHAR(200) NOT NULL,
			unit          VARCHAR(100) NOT NULL,
			issue         INTEGER      NOT NULL DEFAULT 0,
			read_operands INTEGER      NOT NULL DEFAULT 0,
			exec_complete INTEGER      NOT NULL DEFAULT 0,
			write_result  INTEGER      NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create instruction table: %w", err)
	}

	return nil
}

// Write buffers a record.
func (w *SQLiteWriter) Write(r Record) error {
	w.records = append(w.records, r)
	if len(w.records) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush writes all buffered records in one transaction.
func (w *SQLiteWriter) Flush() error {
	if len(w.records) == 0 {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.Stmt(w.statement)
	for _, r := range w.records {
		_, err := stmt.Exec(
			r.RunID,
			r.Seq,
			r.Text,
			r.Unit,
			r.Issue,
			r.ReadOperands,
			r.ExecComplete,
			r.WriteResult,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert %q: %w", r.Text, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	w.records = nil

	return nil
}

// Close flushes and closes the database.
func (w *SQLiteWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	_ = w.statement.Close()

	return w.DB.Close()
}

// SQLiteReader reads records back from a database written by SQLiteWriter.
type SQLiteReader struct {
	*sql.DB
}

// NewSQLiteReader opens a database for reading.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	return &SQLiteReader{DB: db}, nil
}

// ListRuns returns the IDs of all stored runs.
func (r *SQLiteReader) ListRuns() ([]string, error) {
	rows, err := r.Query(`SELECT DISTINCT run_id FROM instruction ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		runs = append(runs, id)
	}

	return runs, rows.Err()
}

// ListRecords returns the records of a run in program order.
func (r *SQLiteReader) ListRecords(runID string) ([]Record, error) {
	rows, err := r.Query(`
		SELECT run_id, seq, text, unit,
			issue, read_operands, exec_complete, write_result
		FROM instruction
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Text,
			&rec.Unit,
			&rec.Issue,
			&rec.ReadOperands,
			&rec.ExecComplete,
			&rec.WriteResult,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
