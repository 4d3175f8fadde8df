package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log: the outcome of a single ingestion
// run.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Mode      string
	Pages     int
	NewCount  int
	Total     int
	Status    string
	Message   string
}

// Run modes and statuses recorded in the log.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,mode,pages,new_count,total_count,status,message"

const (
	numFields    = 8
	logDir       = "logs"
	logFile      = "logs/run-log.csv"
	colTimestamp = 0
	colRunID     = 1
	colMode      = 2
	colPages     = 3
	colNewCount  = 4
	colTotal     = 5
	colStatus    = 6
	colMessage   = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colMode] = e.Mode
	row[colPages] = strconv.Itoa(e.Pages)
	row[colNewCount] = strconv.Itoa(e.NewCount)
	row[colTotal] = strconv.Itoa(e.Total)
	row[colStatus] = e.Status
	row[colMessage] = e.Message
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	pages, err := strconv.Atoi(record[colPages])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing pages %q: %w", record[colPages], err)
	}
	newCount, err := strconv.Atoi(record[colNewCount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing new_count %q: %w", record[colNewCount], err)
	}
	total, err := strconv.Atoi(record[colTotal])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing total_count %q: %w", record[colTotal], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Mode:      record[colMode],
		Pages:     pages,
		NewCount:  newCount,
		Total:     total,
		Status:    record[colStatus],
		Message:   record[colMessage],
	}, nil
}

// Append writes entries to <dataDir>/logs/run-log.csv, creating the
// file and header if needed.
func Append(dataDir string, entries []Entry) error {
	dir := filepath.Join(dataDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dataDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dataDir>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	path := filepath.Join(dataDir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
