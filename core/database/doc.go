// Package database opens the GORM connection backing the run journal.
//
// Two drivers are supported: sqlite (the default, a local file or ":memory:")
// and mysql for shared deployments. GORM's own logging is silenced.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table definition so callers
// can verify that a migrated table carries the columns they rely on.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	missing, err := database.MissingColumns(db, "reconcile_runs", []string{"id", "kind"})
package database
