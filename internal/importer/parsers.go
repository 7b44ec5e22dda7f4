package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/model"
)

// Parser converts a bank CSV file into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]model.BankTransaction, error)
	Format() string
}

// ErrUnknownFormat is returned when no layout matches a format name or file.
var ErrUnknownFormat = errors.New("unknown bank format")

// Layout describes a bank CSV export by column position. TypeCol < 0 means
// the export has no transaction type column.
type Layout struct {
	Name       string
	DateFormat string
	NumFields  int
	DateCol    int
	DescCol    int
	AmountCol  int
	TypeCol    int
}

// LayoutParser parses any CSV export described by a Layout. The first row is
// a header and is skipped.
type LayoutParser struct {
	Layout Layout
}

// ChaseLayout matches Chase checking exports:
// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
var ChaseLayout = Layout{
	Name:       "chase",
	DateFormat: "01/02/2006",
	NumFields:  7,
	DateCol:    1,
	DescCol:    2,
	AmountCol:  3,
	TypeCol:    4,
}

// SimpleLayout is a minimal date,description,amount export with ISO dates,
// for banks without a dedicated layout.
var SimpleLayout = Layout{
	Name:       "simple",
	DateFormat: "2006-01-02",
	NumFields:  3,
	DateCol:    0,
	DescCol:    1,
	AmountCol:  2,
	TypeCol:    -1,
}

// Layouts are the bank exports yuuka can read, in detection order.
var Layouts = []Layout{ChaseLayout, SimpleLayout}

// NewChaseParser returns a parser for Chase checking exports.
func NewChaseParser() *LayoutParser {
	return &LayoutParser{Layout: ChaseLayout}
}

// Formats lists the names of the known layouts.
func Formats() []string {
	out := make([]string, len(Layouts))
	for i, l := range Layouts {
		out[i] = l.Name
	}
	return out
}

// ParserFor returns the parser for a layout name, matched case-insensitively.
func ParserFor(format string) (*LayoutParser, error) {
	for _, l := range Layouts {
		if strings.EqualFold(l.Name, strings.TrimSpace(format)) {
			return &LayoutParser{Layout: l}, nil
		}
	}
	return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
}

// Detect picks the layout of an export from its header row: the column count
// must match and the layout's date column must be titled as a date.
func Detect(header []string) (*LayoutParser, error) {
	for _, l := range Layouts {
		if len(header) != l.NumFields {
			continue
		}
		if strings.Contains(strings.ToLower(header[l.DateCol]), "date") {
			return &LayoutParser{Layout: l}, nil
		}
	}
	return nil, fmt.Errorf("%w: header %q", ErrUnknownFormat, strings.Join(header, ","))
}

// readHeader returns the first CSV record of data.
func readHeader(data []byte) ([]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	return header, nil
}

// Format returns the parser name.
func (p *LayoutParser) Format() string { return p.Layout.Name }

// Parse reads the CSV and returns BankTransactions in file order.
func (p *LayoutParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = p.Layout.NumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", p.Layout.Name, err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (p *LayoutParser) parseRow(rec []string) (model.BankTransaction, error) {
	l := p.Layout
	date, err := time.Parse(l.DateFormat, strings.TrimSpace(rec[l.DateCol]))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[l.DateCol], err)
	}

	// Thousands separators are common in exports edited by spreadsheets.
	raw := strings.ReplaceAll(strings.TrimSpace(rec[l.AmountCol]), ",", "")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[l.AmountCol], err)
	}

	desc := strings.TrimSpace(rec[l.DescCol])
	bt := model.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   makeRef(l.Name, date, desc),
	}
	if l.TypeCol >= 0 {
		bt.Type = rec[l.TypeCol]
	}
	return bt, nil
}

// makeRef creates a reference like chase_20250103_GITHUBPROS.
func makeRef(prefix string, date time.Time, desc string) string {
	short := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(short) > 10 {
		short = short[:10]
	}
	return fmt.Sprintf("%s_%s_%s", prefix, date.Format("20060102"), short)
}
