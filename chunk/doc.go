// Package chunk splits extracted text into overlapping spans.
//
// Splitting is recursive over a fixed separator hierarchy, trying paragraph
// breaks first and degrading toward word and character boundaries only when a
// span would otherwise exceed the size target. Each produced chunk carries the
// source document metadata plus its position within the document.
package chunk
