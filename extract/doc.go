// Package extract converts raw document payloads into plain text.
//
// Each supported content kind has a dedicated extraction path: PDF pages are
// parsed and concatenated, HTML is reduced to readable article text, JSON is
// re-serialized with stable indentation, and textual kinds pass through after
// UTF-8 validation. Extraction also recovers lightweight metadata such as a
// page title or description when the format carries one.
package extract
