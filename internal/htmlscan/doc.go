// Package htmlscan extracts anchor hrefs from HTML with a hand-written
// single-pass scanner.
//
// The scanner deliberately does not build a DOM. It tracks just enough
// state to find fully closed <a> elements and their href attributes,
// skipping every other tag after reading its name. This keeps one pass
// over the document cheap enough to run several times in parallel.
//
// # Partitioning
//
// A scanner is constructed with a partition index and a partition count.
// Anchors are numbered in document order as they close, and a scanner
// claims only the anchors whose ordinal modulo the partition count
// equals its index. N scanners with indexes 0..N-1 over the same text
// therefore claim disjoint anchor sets whose union is exactly the full
// result, with no coordination between them.
package htmlscan
