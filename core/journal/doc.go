// Package journal records every reconciliation run in a SQL table.
//
// Runs are written by the inventory service after each call, from both the
// CLI and the HTTP front end, and listed by `journal list`. Each run keeps the
// outcome summary (action, changed, stage, error code) and, when the report
// archive is enabled, the object key of the full JSON report.
package journal
