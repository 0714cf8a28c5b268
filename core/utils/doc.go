// Package utils provides loose type conversions for decoded webhook payloads, where
// platform ids and quantities arrive as JSON numbers, strings or nothing at all.
package utils
