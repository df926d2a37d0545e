// Package sqlite provides the SQLite-backed manifest store. One row per
// document, keyed by the content-derived identifier.
package sqlite
