// Package storage keeps webhook deliveries that could not be ingested.
//
// Bucket is a single S3-compatible bucket (AWS S3 or a self-hosted MinIO). Open returns
// the minio-backed implementation; tests use core/storage/mocks.
//
// # Dead letters
//
// When a webhook payload fails ingestion, the handler archives it as a JSON Letter
// under <prefix>/<shop>/<topic>/<timestamp>-<id>.json and still acknowledges the
// delivery. The replay command lists the archive, feeds every letter back through
// the engine and removes the letters that went through.
//
//	bucket, err := storage.Open(cfg.Storage)
//	err = bucket.Ensure(ctx)
//
//	letters := storage.NewDeadLetters(bucket, cfg.Storage.DeadLetterPrefix)
//	key, err := letters.Archive(ctx, storage.Letter{Shop: shop, Topic: topic, Payload: body})
package storage
