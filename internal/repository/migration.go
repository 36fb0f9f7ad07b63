package repository

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var Schema string

// chatTables lists the tables owned by the chat layer, children first.
var chatTables = []string{"chat_read_receipts", "chat_message_reactions", "chat_messages"}

// InitSchema creates the chat tables and indexes. It is safe to run repeatedly.
func InitSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// DropChatTables removes the chat tables. Users and journeys are left alone.
func DropChatTables(ctx context.Context, db DBTX) error {
	for _, table := range chatTables {
		if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// TableExists reports whether a table is present in the public schema.
func TableExists(ctx context.Context, db DBTX, table string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table).Scan(&exists)
	return exists, err
}

// ChatTables returns the names of the tables InitSchema manages.
func ChatTables() []string {
	out := make([]string, len(chatTables))
	copy(out, chatTables)
	return out
}
