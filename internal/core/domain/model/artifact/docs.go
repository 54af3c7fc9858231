// Package artifact contains the Artifact entity (one generated deliverable,
// identified by its content hash) and the Batch produced by a generation run.
package artifact
