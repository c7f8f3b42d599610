// Package state defines persistence-facing contracts for loading and saving
// the dynamic properties of data blocks, plus a small resolver that stacks
// stored groups and attaches the result to live blocks.
//
// Responsibilities:
//   - Store only loads/saves a single group for a single Ref.
//   - Resolver loads groups for several refs and merges them with
//     idprop.MergeLayers, strongest first. Entries only present in weaker
//     layers come back as ghosts and read as unset.
//   - The rna package remains persistence-agnostic; all persistence logic
//     stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Resolver -> idprop.MergeLayers(...) -> ID.Properties
//
// Provenance:
//
//	Meta.SnapshotID of every loaded layer is kept on the Resolution, and
//	Resolution.Source reports which layer provided an entry.
//
// Deterministic keys:
//
//	Ref.Identifier() provides the canonical storage key: local/<name> for
//	blocks of the current file and lib/<library>/<name> for linked ones.
package state
