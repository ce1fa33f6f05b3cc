// Package borelog turns free-form borehole-log exports into one canonical
// stratigraphic record.
//
// Exports arrive in many shapes: plain-text reports saved as CSV, spreadsheet
// sheets flattened to CSV, and hand-edited variants of both. None of them has a
// fixed schema, so parsing is heuristic and runs as a strict downward pipeline:
//
//  1. [Lines] splits raw text into trimmed, non-blank lines.
//  2. [SplitFields] splits one line into quote-aware comma-separated cells.
//  3. [ScanMetadata] reads labeled key/value metadata above the layer table.
//  4. [Segment] groups the layer table into one cluster of lines per layer.
//  5. [ExtractLayer] resolves depths, description and sample fields per cluster.
//  6. [ScanRemarks] and [ScanCoreQuality] read document-wide remarks and totals.
//  7. [Parse] assembles the [Record].
//
// # Error Handling
//
// Only one condition is fatal: a document without a project name or job code
// fails with [ErrMissingMetadata]. Everything else degrades: unparseable numbers
// become nil, clusters without resolvable depths are dropped, and unrecognised
// lines are either adopted as a description or ignored.
//
// The parser performs no I/O and holds no state between calls, so the same
// input always yields the same output and calls may run concurrently.
package borelog
