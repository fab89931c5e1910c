// Package inventory wires the reconcile engine to the NetBox resource kinds and
// exposes it to the CLI and over HTTP.
//
// # Kinds
//
// manufacturer, platform (-> manufacturer), tenant, site (-> tenant),
// device_role and device_type (-> manufacturer, keyed by model).
//
// # Components
//
//   - Service: runs a reconciliation, archives the JSON report and records the
//     run in the journal. Archive and journal are optional.
//   - Handler: HTTP endpoints.
//   - Feature: registers the routes with the loader.
//
// # HTTP Endpoints
//
//   - POST /reconcile/:kind : body {"data": {...}, "state": "present|absent", "check_mode": false}
//   - GET /kinds : registered kinds and their fields
//   - GET /runs : recent runs (?kind=, ?key=, ?limit=)
//   - GET /runs/:id : one run
package inventory
