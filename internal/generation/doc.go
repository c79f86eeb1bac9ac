// Package generation defines the boundary between the curriculum pipeline and
// the external generative text service (Gemini, Claude). It owns everything
// needed to turn unreliable model output into a structured record:
//
//   - Generator: the interface every provider adapter implements
//   - Parse/Extract: pulls a JSON object or array out of free-form text
//   - IsTruncated: decides whether a block of text is an incomplete record
//   - Completer: requests continuations until the record is complete or the
//     retry budget is exhausted
//   - Ledger: per-run cost accounting for every generative call
//
// Nothing in this package talks to a database; callers persist what they
// parse.
package generation
