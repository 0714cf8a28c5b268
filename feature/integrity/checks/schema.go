package checks

import (
	"fmt"

	"inventory-ledger/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing_columns", "missing_table", "error"
}

// CheckSchema verifies that the database has every column of the given GORM models.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport, len(models)),
	}

	for _, model := range models {
		table, missing, err := database.MissingColumns(db, model)
		if err != nil {
			report.Matched = false
			report.Errors = append(report.Errors, err.Error())
			if table != "" {
				report.Tables[table] = TableReport{Status: "error"}
			}
			continue
		}

		tr := TableReport{Status: "ok", MissingColumns: missing}
		switch {
		case len(missing) == 0:
		case db.Migrator().HasTable(table):
			tr.Status = "missing_columns"
		default:
			tr.Status = "missing_table"
		}
		if tr.Status != "ok" {
			report.Matched = false
		}
		report.Tables[table] = tr
	}

	return report, nil
}
