// Package app wires configuration, the delivery ledger, transports and the
// report into the operations exposed by the command line: sending a batch,
// regenerating the dashboard and previewing a single contact.
//
// A batch reads the contacts file and the ledger afresh, dispatches through
// the configured transport (or the dry-run previewer) and always ends by
// regenerating the dashboard. When REDIS_URL is set, real batches hold a
// Redis lock keyed by the ledger location so two processes never dispatch
// against the same ledger at once.
package app
