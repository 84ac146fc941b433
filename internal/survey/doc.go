// Package survey turns an uploaded survey CSV into chart descriptions.
//
// The package is pure: no I/O beyond the io.Reader handed to [ReadText], no
// package-level mutable state, and every call builds its values from scratch.
// It can be used by the web handlers, the surveyctl CLI, or tests without
// modification.
//
// # Pipeline
//
// A [Pipeline] run goes through three stages:
//
//  1. [ParseTable] splits raw text into a header list and row records.
//  2. [ExtractFeatures] and [Tally] map row values to numeric vectors and a
//     categorical count, using the header names chosen by [Columns].
//  3. [CorrelationMatrix] computes pairwise [Pearson] coefficients.
//
// The resulting [Scatter], [Heatmap] and [Bar] descriptions are handed to a
// [Sink]. Rendering is somebody else's job.
//
// # Error Handling
//
// Structural problems are returned as wrapped sentinel errors
// ([ErrEmptyInput], [ErrMalformedRow], [ErrUnknownColumn],
// [ErrLengthMismatch]). Zero-variance vectors and unmapped categorical values
// are not errors: they resolve to 0 locally. [MapError] converts any error into
// a [UserMessage] with a support code.
package survey
