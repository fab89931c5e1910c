// Package storage archives reconciliation reports in S3 compatible object storage.
//
// It wraps the MinIO Go client behind a small Client interface so the archive
// can be tested with the mocks in core/storage/mocks. Works against AWS S3 and
// self-hosted MinIO.
//
// # Archiver
//
// Every reconciliation result can be uploaded as a JSON object under
//
//	<prefix>/<kind>/<yyyy>/<mm>/<dd>/<run id>.json
//
// The key is recorded in the run journal so a report can be fetched back later.
//
//	client, err := storage.NewClient(cfg.Storage)
//	archiver := storage.NewArchiver(client, cfg.Storage, logger)
//	key, err := archiver.Store(ctx, "platform", runID, result)
package storage
