// Package ledger keeps an append-only CSV record of every balance movement.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindCredit      Kind = "credit"
	KindSplit       Kind = "split"
	KindDebit       Kind = "debit"
	KindAllowance   Kind = "allowance"
	KindSavingsIn   Kind = "savings_in"
	KindSavingsOut  Kind = "savings_out"
	KindGoalIn      Kind = "goal_in"
	KindGoalOut     Kind = "goal_out"
	KindCategoryIn  Kind = "category_in"
	KindCategoryOut Kind = "category_out"
	KindWithdrawal  Kind = "withdrawal"
)

// Entry is one row in the ledger.
type Entry struct {
	Timestamp time.Time
	ChildID   string
	Kind      Kind
	Amount    decimal.Decimal
	Balance   decimal.Decimal // child's main balance after the movement
	Detail    string
}

// Header is the CSV header for ledger.csv.
const Header = "timestamp,child_id,kind,amount,balance,detail"

// FileName is the ledger file inside the data directory.
const FileName = "ledger.csv"

const (
	numFields    = 6
	colTimestamp = 0
	colChildID   = 1
	colKind      = 2
	colAmount    = 3
	colBalance   = 4
	colDetail    = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colChildID] = e.ChildID
	row[colKind] = string(e.Kind)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colBalance] = e.Balance.StringFixed(2)
	row[colDetail] = e.Detail
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
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	return Entry{
		Timestamp: ts,
		ChildID:   record[colChildID],
		Kind:      Kind(record[colKind]),
		Amount:    amount,
		Balance:   balance,
		Detail:    record[colDetail],
	}, nil
}

// File is a ledger stored as <dir>/ledger.csv.
type File struct {
	dir string
}

// NewFile returns a ledger rooted at dir. Nothing is created until the first Append.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Path returns the CSV path.
func (f *File) Path() string {
	return filepath.Join(f.dir, FileName)
}

// Append writes entries, creating the file and header if needed.
func (f *File) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(f.Path()); os.IsNotExist(err) {
		needsHeader = true
	}

	fh, err := os.OpenFile(f.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer fh.Close()

	cw := csv.NewWriter(fh)
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

	cw.Flush()
	return cw.Error()
}

// Read returns all entries. A missing file yields no entries.
func (f *File) Read() ([]Entry, error) {
	fh, err := os.Open(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer fh.Close()

	return ReadEntries(fh)
}

// ReadEntries parses a ledger CSV stream including its header.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
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

// ForChild filters entries to one child, preserving order.
func ForChild(entries []Entry, childID string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.ChildID == childID {
			out = append(out, e)
		}
	}
	return out
}
