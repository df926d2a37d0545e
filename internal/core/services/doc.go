// Package services implements the core orchestration logic: document
// ingestion, question answering and the pipeline facade that owns the
// manifest store and vector index for the process lifetime.
package services
