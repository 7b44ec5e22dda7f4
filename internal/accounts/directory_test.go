package accounts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/store"
)

const owner = "user-1"

func newTestDirectory(t *testing.T) (*Directory, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "yuuka.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDirectory(db), db
}

func createGroup(t *testing.T, d *Directory, name string, typ model.AccountType) *model.AccountGroup {
	t.Helper()
	g, err := d.CreateGroup(context.Background(), CreateGroupParams{Name: name, Owner: owner, Type: typ})
	require.NoError(t, err)
	return g
}

func TestCreateGroup_AutoAlias(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "  Main Pocket ", model.AccountTypeAsset)
	assert.Equal(t, "Main Pocket", g.Name)
	assert.NotZero(t, g.ID)

	got, err := d.Resolve(ctx, "MAIN POCKET", owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, model.AccountTypeAsset, got.Type)

	aliases, err := d.AliasesForGroup(ctx, g.ID, owner)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, "main pocket", aliases[0].Alias)
}

func TestCreateGroup_Duplicate(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	createGroup(t, d, "Wallet", model.AccountTypeAsset)
	_, err := d.CreateGroup(ctx, CreateGroupParams{Name: "wallet", Owner: owner, Type: model.AccountTypeAsset})
	assert.ErrorIs(t, err, model.ErrDuplicateGroup)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	groups, err := d.ListGroups(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	// Another owner has its own namespace.
	_, err = d.CreateGroup(ctx, CreateGroupParams{Name: "Wallet", Owner: "user-2", Type: model.AccountTypeAsset})
	assert.NoError(t, err)
}

func TestCreateGroup_DuplicateNonASCII(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "Ärzte", model.AccountTypeExpense)
	_, err := d.CreateGroup(ctx, CreateGroupParams{Name: "ärzte", Owner: owner, Type: model.AccountTypeExpense})
	assert.ErrorIs(t, err, model.ErrDuplicateGroup)
	assert.NotErrorIs(t, err, model.ErrAliasConflict)

	byName, err := d.GroupByName(ctx, "ÄRZTE", owner)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, g.ID, byName.ID)
}

func TestCreateGroup_InvalidInput(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    CreateGroupParams
	}{
		{"empty name", CreateGroupParams{Name: "  ", Owner: owner, Type: model.AccountTypeAsset}},
		{"no owner", CreateGroupParams{Name: "Bank", Type: model.AccountTypeAsset}},
		{"bad type", CreateGroupParams{Name: "Bank", Owner: owner, Type: "income"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateGroup(ctx, tt.p)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestCreateGroup_NameClaimedByAlias(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	wallet := createGroup(t, d, "Wallet", model.AccountTypeAsset)
	_, err := d.AddAlias(ctx, "dompet", wallet.ID, owner)
	require.NoError(t, err)

	_, err = d.CreateGroup(ctx, CreateGroupParams{Name: "Dompet", Owner: owner, Type: model.AccountTypeAsset})
	assert.ErrorIs(t, err, model.ErrAliasConflict)

	// The group insert was rolled back with the alias.
	g, err := d.GroupByName(ctx, "Dompet", owner)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestResolve_CaseAndWhitespace(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "Pocket", model.AccountTypeAsset)
	_, err := d.AddAlias(ctx, "main pocket", g.ID, owner)
	require.NoError(t, err)

	for _, name := range []string{"main pocket", "Main Pocket", " MAIN POCKET "} {
		got, err := d.Resolve(ctx, name, owner)
		require.NoError(t, err)
		require.NotNil(t, got, name)
		assert.Equal(t, g.ID, got.ID)
	}

	got, err := d.Resolve(ctx, "unknown", owner)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = d.Resolve(ctx, "main pocket", "user-2")
	require.NoError(t, err)
	assert.Nil(t, got, "aliases are scoped per owner")
}

func TestAddAlias_Idempotent(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "GoPay", model.AccountTypeAsset)
	a1, err := d.AddAlias(ctx, "go-pay", g.ID, owner)
	require.NoError(t, err)
	a2, err := d.AddAlias(ctx, "GO-PAY", g.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, a1.ID, a2.ID)

	aliases, err := d.AliasesForGroup(ctx, g.ID, owner)
	require.NoError(t, err)
	assert.Len(t, aliases, 2)
}

func TestAddAlias_Conflict(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g1 := createGroup(t, d, "Bank", model.AccountTypeAsset)
	g2 := createGroup(t, d, "Wallet", model.AccountTypeAsset)

	_, err := d.AddAlias(ctx, "x", g1.ID, owner)
	require.NoError(t, err)
	_, err = d.AddAlias(ctx, "x", g2.ID, owner)
	assert.ErrorIs(t, err, model.ErrAliasConflict)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	got, err := d.Resolve(ctx, "x", owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, g1.ID, got.ID)
}

func TestAddAlias_GroupNotFound(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.AddAlias(ctx, "x", 999, owner)
	assert.ErrorIs(t, err, model.ErrGroupNotFound)

	g := createGroup(t, d, "Bank", model.AccountTypeAsset)
	_, err = d.AddAlias(ctx, "x", g.ID, "user-2")
	assert.ErrorIs(t, err, model.ErrGroupNotFound, "group belongs to another owner")

	_, err = d.AddAlias(ctx, "   ", g.ID, owner)
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestRemoveAlias(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "Bank", model.AccountTypeAsset)
	_, err := d.AddAlias(ctx, "bca", g.ID, owner)
	require.NoError(t, err)

	removed, err := d.RemoveAlias(ctx, " BCA ", owner)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = d.RemoveAlias(ctx, "bca", owner)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := d.Resolve(ctx, "bca", owner)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The group itself survives.
	got, err = d.Resolve(ctx, "bank", owner)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestEnsureSystemGroups(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	first, err := d.EnsureSystemGroups(ctx, owner)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, model.AccountTypeRevenue, first["income"].Type)
	assert.Equal(t, model.AccountTypeExpense, first["expense"].Type)
	assert.Equal(t, model.AccountTypeAsset, first["cash"].Type)
	assert.True(t, first["income"].IsSystem)

	second, err := d.EnsureSystemGroups(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first["income"].ID, second["income"].ID)

	groups, err := d.ListGroups(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
	// asset, then revenue, then expense
	assert.Equal(t, "Cash", groups[0].Name)
	assert.Equal(t, "Income", groups[1].Name)
	assert.Equal(t, "Expense", groups[2].Name)
}

func TestEnsureSystemGroups_AliasAlreadyTaken(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	wallet := createGroup(t, d, "Wallet", model.AccountTypeAsset)
	_, err := d.AddAlias(ctx, "cash", wallet.ID, owner)
	require.NoError(t, err)

	groups, err := d.EnsureSystemGroups(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Cash", groups["cash"].Name)

	got, err := d.Resolve(ctx, "cash", owner)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, got.ID, "user alias wins")
}

func TestEnsureSystemGroups_Custom(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "yuuka.db"), store.Options{})
	require.NoError(t, err)
	defer db.Close()

	d := NewDirectory(db, WithSystemGroups([]SystemGroup{
		{Name: "Income", Type: model.AccountTypeRevenue},
		{Name: "Expense", Type: model.AccountTypeExpense},
	}))
	groups, err := d.EnsureSystemGroups(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestGroupLookups(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	g := createGroup(t, d, "Credit Card", model.AccountTypeLiability)

	byID, err := d.GroupByID(ctx, g.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Credit Card", byID.Name)

	missing, err := d.GroupByID(ctx, g.ID, "user-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byName, err := d.GroupByName(ctx, "credit card", owner)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, g.ID, byName.ID)
}

func TestAssignName(t *testing.T) {
	d, db := newTestDirectory(t)
	ctx := context.Background()

	// Two entries recorded against an unresolved name.
	_, err := db.SQL().Exec(`INSERT INTO transactions (id, owner, created_at) VALUES (1, ?, '2025-01-01T00:00:00Z')`, owner)
	require.NoError(t, err)
	_, err = db.SQL().Exec(`INSERT INTO journal_entries (transaction_id, account_name, account_type, entry_type, amount)
		VALUES (1, 'bca', 'asset', 'debit', '100'), (1, 'income', 'revenue', 'credit', '100')`)
	require.NoError(t, err)

	pending, err := d.UnresolvedNames(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"bca", "income"}, pending)

	bank := createGroup(t, d, "Bank", model.AccountTypeAsset)
	n, err := d.AssignName(ctx, "BCA", bank.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pending, err = d.UnresolvedNames(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"income"}, pending)

	var name string
	var ref int64
	require.NoError(t, db.SQL().QueryRow(`SELECT account_name, account_ref FROM journal_entries WHERE entry_type='debit'`).Scan(&name, &ref))
	assert.Equal(t, "Bank", name)
	assert.Equal(t, bank.ID, ref)
}

func TestInferType(t *testing.T) {
	d, _ := newTestDirectory(t)
	assert.Equal(t, model.AccountTypeRevenue, d.InferType("Monthly Salary"))
	assert.Equal(t, model.AccountTypeExpense, d.InferType("food"))
	assert.Equal(t, model.AccountTypeAsset, d.InferType("GoPay"))
	assert.Equal(t, model.AccountTypeLiability, d.InferType("car loan"))
	assert.Equal(t, model.AccountTypeAsset, d.InferType("mystery"))
}
