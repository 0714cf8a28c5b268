// Package database opens the ledger database and inspects its schema.
//
// Connect wraps GORM for MySQL (production) and SQLite (local runs and tests). Both
// drivers read and write timestamps in UTC, which the ledger's time-window queries
// rely on.
//
// The inspector backs the migrate --check command: MissingColumns compares a model's
// gorm schema against the live table and lists the columns a deploy still needs.
//
//	db, err := database.Connect(cfg.Database)
//	table, missing, err := database.MissingColumns(db, &ledger.Entry{})
package database
