package vault

import (
	"fmt"

	"go.uber.org/zap"
)

// Migrate brings an older credentials schema up to date. It is additive and
// idempotent: presence-checking is the source of truth, there is no schema
// version table, and running it on every startup is safe.
//
// Databases created before categories, URLs, expiry dates, and secret-change
// tracking existed gain those columns here, with NULL categories backfilled
// to "Other" and last_secret_change backfilled from created_at.
func (v *Vault) Migrate() error {
	columns := []struct {
		name string
		def  string
	}{
		{"notes", "TEXT"},
		{"is_favorite", "BOOLEAN DEFAULT 0"},
		{"category", "TEXT"},
		{"website_url", "TEXT"},
		{"expiry_date", "TEXT"},
		{"created_at", "TIMESTAMP"},
		{"modified_at", "TIMESTAMP"},
		{"last_secret_change", "TIMESTAMP"},
	}

	existing, err := v.tableColumns("credentials")
	if err != nil {
		return fmt.Errorf("vault: failed to inspect credentials schema: %w", err)
	}

	for _, col := range columns {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE credentials ADD COLUMN %s %s", col.name, col.def)
		if _, err := v.db.Exec(stmt); err != nil {
			return fmt.Errorf("vault: failed to add column %s: %w", col.name, err)
		}
		v.logger.Info("added column", zap.String("table", "credentials"), zap.String("column", col.name))
	}

	backfills := []string{
		`UPDATE credentials SET category = 'Other' WHERE category IS NULL`,
		`UPDATE credentials SET last_secret_change = COALESCE(created_at, datetime('now')) WHERE last_secret_change IS NULL`,
	}
	for _, stmt := range backfills {
		if _, err := v.db.Exec(stmt); err != nil {
			return fmt.Errorf("vault: failed to backfill defaults: %w", err)
		}
	}

	return nil
}

// tableColumns returns the set of column names present on a table.
func (v *Vault) tableColumns(table string) (map[string]bool, error) {
	rows, err := v.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal interface{}
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
