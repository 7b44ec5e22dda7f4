package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionCommands(t *testing.T) {
	newLedger(t, "--owner", "u1", "--chart")

	out, err := runYuuka(t, "post", "incoming", "5000000", "--to", "bank", "--desc", "gaji januari")
	require.NoError(t, err)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Income -> Bank  5000000.00")

	out, err = runYuuka(t, "post", "outgoing", "25000", "--from", "gopay", "--to", "makan")
	require.NoError(t, err)
	assert.Contains(t, out, "GoPay -> Food  25000.00")

	out, err = runYuuka(t, "edit", "#2", "--amount", "30000", "--desc", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "30000.00")
	assert.Contains(t, out, "lunch")

	out, err = runYuuka(t, "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "debit")
	assert.Contains(t, out, "credit")

	out, err = runYuuka(t, "list", "--action", "outgoing")
	require.NoError(t, err)
	assert.Contains(t, out, "#2")
	assert.NotContains(t, out, "#1 ")

	out, err = runYuuka(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "4970000.00")

	out, err = runYuuka(t, "report", "trial")
	require.NoError(t, err)
	assert.Contains(t, out, "Balanced.")

	out, err = runYuuka(t, "report", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "Net income  4970000.00")

	out, err = runYuuka(t, "report", "sheet")
	require.NoError(t, err)
	assert.Contains(t, out, "Retained earnings")
	assert.NotContains(t, out, "NOT BALANCED")

	out, err = runYuuka(t, "report", "balances")
	require.NoError(t, err)
	assert.Contains(t, out, "GoPay")
	assert.Contains(t, out, "-30000.00")

	out, err = runYuuka(t, "report", "ledger", "bank")
	require.NoError(t, err)
	assert.Contains(t, out, "Bank (asset)  balance 5000000.00")

	out, err = runYuuka(t, "report", "spending", "--start", "2000-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Food")

	out, err = runYuuka(t, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger OK.")

	out, err = runYuuka(t, "delete", "#2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted #2")

	_, err = runYuuka(t, "show", "#2")
	assert.Error(t, err)
	_, err = runYuuka(t, "delete", "#2")
	assert.Error(t, err)
}

func TestTransactionCommands_Invalid(t *testing.T) {
	newLedger(t, "--owner", "u1")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown action", []string{"post", "refund", "10", "--to", "cash"}},
		{"bad amount", []string{"post", "incoming", "ten", "--to", "cash"}},
		{"too many decimals", []string{"post", "incoming", "10.001", "--to", "cash"}},
		{"transfer needs source", []string{"post", "transfer", "10", "--to", "cash"}},
		{"bad ref", []string{"edit", "abc", "--amount", "5"}},
		{"bad period", []string{"report", "income", "--start", "01/02/2025"}},
		{"reversed period", []string{"report", "spending", "--start", "2025-02-01", "--end", "2025-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runYuuka(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestNoOwner(t *testing.T) {
	newLedger(t)

	_, err := runYuuka(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no owner")

	out, err := runYuuka(t, "--owner", "u2", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions.")
}

func TestAccountsCommands(t *testing.T) {
	newLedger(t, "--owner", "u1")

	out, err := runYuuka(t, "accounts", "create", "Jenius", "--type", "asset")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Jenius (asset)")

	_, err = runYuuka(t, "accounts", "create", "jenius")
	assert.Error(t, err)

	out, err = runYuuka(t, "accounts", "alias", "add", "JNS", "Jenius")
	require.NoError(t, err)
	assert.Contains(t, out, "jns -> Jenius")

	out, err = runYuuka(t, "accounts", "resolve", " jns ")
	require.NoError(t, err)
	assert.Contains(t, out, "jns -> Jenius (asset)")

	_, err = runYuuka(t, "accounts", "alias", "remove", "jns")
	require.NoError(t, err)
	_, err = runYuuka(t, "accounts", "alias", "remove", "jns")
	assert.Error(t, err)

	out, err = runYuuka(t, "accounts", "resolve", "jns")
	require.NoError(t, err)
	assert.Contains(t, out, "unresolved")

	out, err = runYuuka(t, "accounts", "infer", "monthly salary")
	require.NoError(t, err)
	assert.Equal(t, "revenue\n", out)

	_, err = runYuuka(t, "post", "outgoing", "15000", "--from", "cash", "--to", "warung bu tini")
	require.NoError(t, err)

	out, err = runYuuka(t, "accounts", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "warung bu tini")

	_, err = runYuuka(t, "accounts", "create", "Eating Out", "--type", "expense")
	require.NoError(t, err)
	out, err = runYuuka(t, "accounts", "assign", "Warung Bu Tini", "eating out")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries updated")

	out, err = runYuuka(t, "accounts", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending names.")

	out, err = runYuuka(t, "accounts", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Jenius")
	assert.Contains(t, out, "warung bu tini")
}

func TestAccountsApply(t *testing.T) {
	dir := newLedger(t, "--owner", "u1")

	chart := "groups:\n  - name: Jago\n    type: asset\n    aliases: [bank jago]\n"
	path := filepath.Join(dir, "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chart), 0o644))

	out, err := runYuuka(t, "accounts", "apply", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Groups created: 1")

	out, err = runYuuka(t, "accounts", "apply", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Groups created: 0, already present: 1, aliases added: 0")

	_, err = runYuuka(t, "accounts", "apply")
	assert.Error(t, err)

	out, err = runYuuka(t, "accounts", "apply", "--default")
	require.NoError(t, err)
	assert.Contains(t, out, "Groups created: 10")
}

const chaseCSV = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,8496.00,
CREDIT,01/15/2025,ACME CONSULTING INVOICE 1042,3500.00,ACH_CREDIT,11996.00,
`

func TestImportCommand(t *testing.T) {
	dir := newLedger(t, "--owner", "u1")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inbox", "jan.csv"), []byte(chaseCSV), 0o644))

	out, err := runYuuka(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "jan.csv: 2 posted, 0 already imported")

	processed := filepath.Join(dir, "inbox", "processed", "jan.csv")
	_, err = os.Stat(processed)
	require.NoError(t, err)

	out, err = runYuuka(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to import.")

	out, err = runYuuka(t, "import", processed)
	require.NoError(t, err)
	assert.Contains(t, out, "jan.csv: 0 posted, 2 already imported")

	out, err = runYuuka(t, "report", "balances")
	require.NoError(t, err)
	assert.Contains(t, out, "3496.00")

	_, err = runYuuka(t, "import", "--format", "ofx", processed)
	assert.Error(t, err)

	// Layout is picked per file from its header row.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inbox", "feb.csv"),
		[]byte("date,description,amount\n2025-02-01,Refund,12.50\n"), 0o644))
	out, err = runYuuka(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "feb.csv: 1 posted, 0 already imported")
}
