// Package integrity provides operational health checks for the ledger.
//
// # Checks Provided
//
//   - Schema: Validates that the ledger and shops tables have every column of their models.
//   - DeadLetters: Counts webhook deliveries waiting in dead-letter storage for a replay.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check (supports ?fix=true to migrate the ledger table).
//   - GET /integrity/deadletters : Reports the dead-letter backlog.
package integrity
