package store

import (
	"context"
	"fmt"
)

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Canonical accounts, one namespace per owner. name_key is the name
-- normalized in Go; SQLite's lower() only folds ASCII.
CREATE TABLE IF NOT EXISTS account_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    name_key TEXT NOT NULL,
    account_type TEXT NOT NULL
        CHECK (account_type IN ('asset', 'liability', 'equity', 'revenue', 'expense')),
    owner TEXT NOT NULL,
    description TEXT,
    is_system INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_account_groups_name_owner
    ON account_groups(name_key, owner);

CREATE INDEX IF NOT EXISTS idx_account_groups_owner
    ON account_groups(owner);

-- Normalized names mapped to exactly one group per owner
CREATE TABLE IF NOT EXISTS account_aliases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    alias TEXT NOT NULL,
    group_id INTEGER NOT NULL REFERENCES account_groups(id) ON DELETE CASCADE,
    owner TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(alias, owner)
);

CREATE INDEX IF NOT EXISTS idx_account_aliases_group
    ON account_aliases(group_id);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT,
    raw_text TEXT NOT NULL DEFAULT '',
    confidence REAL NOT NULL DEFAULT 0 CHECK (confidence >= 0 AND confidence <= 1),
    owner TEXT NOT NULL,
    guild_ref TEXT,
    channel_ref TEXT NOT NULL DEFAULT '',
    message_ref TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL DEFAULT 'transfer'
        CHECK (action IN ('incoming', 'outgoing', 'transfer')),
    created_at TEXT NOT NULL,              -- RFC3339 UTC
    confirmed INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_transactions_owner_created
    ON transactions(owner, created_at);

CREATE INDEX IF NOT EXISTS idx_transactions_message_ref
    ON transactions(owner, message_ref);

-- One side of a transaction; amount is a canonical decimal string
CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    account_ref INTEGER REFERENCES account_groups(id) ON DELETE SET NULL,
    account_name TEXT NOT NULL,
    account_type TEXT NOT NULL
        CHECK (account_type IN ('asset', 'liability', 'equity', 'revenue', 'expense')),
    entry_type TEXT NOT NULL CHECK (entry_type IN ('debit', 'credit')),
    amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_txn
    ON journal_entries(transaction_id);

CREATE INDEX IF NOT EXISTS idx_journal_entries_account
    ON journal_entries(account_name);
`

// InitializeSchema creates all tables and indexes if they don't exist.
func InitializeSchema(ctx context.Context, s *DB) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return Classify(fmt.Errorf("creating schema: %w", err))
	}
	return nil
}
