// Package api defines the JSON wire format shared by the roadmap CLI and the
// roadmapd snapshot store.
//
// # Key Types
//
// Module/SubItem: transport representation of a reconciled module, including
// its effective completion percent.
//
// ModulesEnvelope/RawEnvelope: the { "modules": [...] } body used by the list
// and bulk endpoints. RawEnvelope keeps each record undecoded so the store can
// persist it as-is and the client can decode it tolerantly.
//
// Attachments: per-module file listing grouped by category.
//
// # Converters
//
// FromModule: catalog.Module -> Module.
//
// ToPatch: raw record -> catalog.Patch. Each field is decoded on its own; a
// missing or malformed field is left nil instead of failing the record.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Statuses are exposed as their lowercase
// names. Timestamps use RFC3339 with milliseconds.
package api
