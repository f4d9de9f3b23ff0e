// Package catalog holds the hand-authored module catalog: the closed status,
// category, and priority enums, the Module and SubItem records, and the
// partial Patch shape used for records read back from the remote snapshot.
//
// The catalog is loaded from YAML (see sample_catalog.yaml) and is the
// authoritative source for module identity and metadata. Status values in the
// catalog are "manual" statuses; the build manifest may override them during
// derivation. Static invariants (unique ids, contiguous execution order) are
// reported by Check and are never repaired at runtime.
package catalog
