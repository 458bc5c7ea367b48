// Package database keeps the run history journal in SQLite.
//
// Every folder run is a row in runs, and every processed file appends a row
// to outcomes holding its status, byte counts, the resolution it was
// processed against and a content hash of the file left on disk. A later run
// uses IsProcessed to skip files whose content and target have not changed.
//
// The journal uses WAL mode with a busy timeout so concurrent workers can
// record outcomes without "database is locked" errors.
package database
