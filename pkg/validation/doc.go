// Package validation checks deposition tables.
//
// A run first verifies that the table carries every column of the reference
// vocabulary (CheckSchema). If it does, each record is checked on four
// independent axes and every validated column of every record receives
// exactly one Verdict:
//
//   - the spectrum identifier column must hold well-formed Universal
//     Spectrum Identifiers that the identifier service resolves,
//   - the structure column must hold a SMILES string the structure service
//     converts,
//   - each controlled field must hold values from the vocabulary.
//
// Verdicts never abort a run. Network problems are recorded as
// NetworkFailure verdicts; only a schema failure or a cancelled context makes
// Pipeline.Run return an error.
//
// # Concurrency
//
// Run fans out one task per record and validated column under an errgroup
// limited to PipelineConfig.Concurrency. Each task writes only its own slot
// of the result, so no locking is needed. Outstanding network requests are
// further bounded inside each resolver.
package validation
