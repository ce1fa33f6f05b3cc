// Package core is the borehole-log import service: it decodes uploaded
// exports, parses them, stores the parsed document where stratum resolution
// will find it, and keeps a history of every attempt.
//
// The service is transport independent; the HTTP server and the CLI both
// drive it.
//
// # Import flow
//
//  1. [Service.Import] validates the identity and takes a slot from the
//     [ImportLimiter], waiting up to the configured time.
//  2. The upload is decoded by [Decode]: size-checked, flattened when it is
//     a spreadsheet, otherwise stripped of its BOM and repaired to UTF-8.
//  3. The text is parsed with [borelog.Parse].
//  4. The record is converted with [stratum.FromRecord] and written under the
//     version's csv-parse prefix, where it becomes the highest-priority
//     stratum candidate.
//  5. The attempt is recorded in import history, when history is enabled.
//
// # Error Handling
//
// Technical errors are mapped to coded user messages with [MapError]:
//
//   - PARSE001: header metadata missing
//   - FILE001-FILE005: upload size, spreadsheet, missing, empty and malformed uploads
//   - IMP001-IMP005: busy, bad identity, storage, cancellation, timeout
//   - DB001-DB004: history disabled or unreachable
package core
