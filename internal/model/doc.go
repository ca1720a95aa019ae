// Package model defines the element forest shared by all analysis phases.
//
// # Purpose
//
//   - Provide deterministic, format-agnostic tree structures that archive
//     analyzers produce and the walker, checks and transforms consume.
//   - Keep ordering stable: children are sorted by kind rank and signature so
//     two runs over the same inputs visit elements in the same order.
//   - Model cross-references (use sites) as a typed edge set kept symmetric
//     with the inverse referencing sets.
//
// # Scope
//
// Package model performs no IO, no matching and no diffing. Filtering lives
// in internal/filter, pairing in internal/walker, findings in internal/diff.
//
// # Data model
//
// Element is the central record. It carries:
//
//   - Kind – format-specific tag; annotation kinds always sort last among
//     siblings so their findings can be folded into the enclosing report.
//   - Signature – per-kind comparable key; kind plus signature identifies the
//     "same" element across the old and new forest.
//   - Archive – provenance, the logical name of the input artifact.
//   - Parent / children – ownership runs strictly through the parent link;
//     reference edges never own.
//
// Keep the structures deterministic: any new field must not introduce map
// iteration order into child ordering or reference enumeration.
package model
