// Package chunking splits document text into bounded, overlapping chunks.
//
// Text is first cut into units at the coarsest separator that occurs in it
// (blank line, then newline, then space, then between characters); any unit
// still too large is cut again with the next finer separator. Units are then
// merged greedily into chunks of at most the configured size, and every chunk
// after the first starts exactly `overlap` characters before the previous one
// ended, so consecutive chunks repeat a span of text across the boundary.
// With custom separators an indivisible unit may not fit behind a full
// overlap; the overlap at that boundary is shortened instead.
//
// All sizes are measured in characters (Unicode code points).
package chunking
