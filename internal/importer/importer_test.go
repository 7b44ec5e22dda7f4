package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaseParser_Parse(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	p := NewChaseParser()
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Len(t, txns, 6)

	// First: GITHUB subscription
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, "-4.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", txns[0].Type)
	assert.Equal(t, 2025, txns[0].Date.Year())
	assert.Equal(t, 1, int(txns[0].Date.Month()))
	assert.Equal(t, 3, txns[0].Date.Day())

	// Fourth: ACME income (positive)
	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[3].Description)
	assert.True(t, txns[3].Amount.IsPositive())
	assert.Equal(t, "3500.00", txns[3].Amount.StringFixed(2))
}

func TestChaseParser_DateParsing(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	p := NewChaseParser()
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	// Jan 22
	last := txns[5]
	assert.Equal(t, 2025, last.Date.Year())
	assert.Equal(t, 1, int(last.Date.Month()))
	assert.Equal(t, 22, last.Date.Day())
}

func TestChaseParser_NegativePositiveAmounts(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	p := NewChaseParser()
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	for _, txn := range txns {
		if txn.Description == "ACME CONSULTING INVOICE 1042" {
			assert.True(t, txn.Amount.IsPositive())
		} else {
			assert.True(t, txn.Amount.IsNegative(), "expected negative for %s", txn.Description)
		}
	}
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := NewChaseParser()
	txns, err := p.Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestChaseParser_BadDate(t *testing.T) {
	csv := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\nDEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"
	p := NewChaseParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestChaseParser_BadAmount(t *testing.T) {
	csv := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\nDEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"
	p := NewChaseParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestChaseParser_Format(t *testing.T) {
	p := NewChaseParser()
	assert.Equal(t, "chase", p.Format())
}

func TestChaseParser_Reference(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	p := NewChaseParser()
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	// Reference format: chase_YYYYMMDD_<prefix>
	assert.Equal(t, "chase_20250103_GITHUBPROS", txns[0].Reference)
}

func TestParserFor(t *testing.T) {
	p, err := ParserFor("Chase")
	require.NoError(t, err)
	assert.Equal(t, "chase", p.Format())

	_, err = ParserFor("ofx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "chase, simple")
	assert.Equal(t, []string{"chase", "simple"}, Formats())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"chase", "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #", "chase"},
		{"simple", "date,description,amount", "simple"},
		{"simple titled", "Tanggal Date, Keterangan, Jumlah", "simple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := readHeader([]byte(tt.header + "\n"))
			require.NoError(t, err)
			p, err := Detect(header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Format())
		})
	}

	_, err := Detect([]string{"when", "what", "how much"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Detect([]string{"date", "amount"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestInbox_Pending(t *testing.T) {
	box := Inbox{Dir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(box.Dir, "feb.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(box.Dir, "JAN.CSV"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(box.Dir, "notes.txt"), []byte("data"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(box.Dir, processedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(box.Dir, processedDir, "old.csv"), []byte("data"), 0o644))

	paths, err := box.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(box.Dir, "JAN.CSV"), filepath.Join(box.Dir, "feb.csv")}, paths)
}

func TestInbox_PendingEmptyOrMissing(t *testing.T) {
	paths, err := Inbox{Dir: t.TempDir()}.Pending()
	require.NoError(t, err)
	assert.Nil(t, paths)

	paths, err = Inbox{Dir: filepath.Join(t.TempDir(), "nope")}.Pending()
	require.NoError(t, err)
	assert.Nil(t, paths)
}

func TestInbox_Archive(t *testing.T) {
	box := Inbox{Dir: t.TempDir()}
	path := filepath.Join(box.Dir, "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	require.NoError(t, box.Archive(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	info, err := os.Stat(filepath.Join(box.Dir, processedDir, "bank.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	assert.Error(t, box.Archive(filepath.Join(box.Dir, "ghost.csv")))
}

func TestSimpleParser(t *testing.T) {
	csv := "date,description,amount\n2025-02-01, Gaji Februari ,\"5,000,000\"\n2025-02-03,Kopi,-28000.50\n"
	p, err := ParserFor("simple")
	require.NoError(t, err)

	txns, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "Gaji Februari", txns[0].Description)
	assert.Equal(t, "5000000", txns[0].Amount.String())
	assert.Empty(t, txns[0].Type)
	assert.Equal(t, "simple_20250201_GajiFebrua", txns[0].Reference)
	assert.Equal(t, "-28000.5", txns[1].Amount.String())
}

func TestSimpleParser_WrongFieldCount(t *testing.T) {
	p := &LayoutParser{Layout: SimpleLayout}
	_, err := p.Parse(strings.NewReader("date,description,amount\n2025-02-01,Gaji\n"))
	assert.Error(t, err)
}
