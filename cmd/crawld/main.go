// Package main provides the entry point for the crawld CLI.
//
// crawld is a recursive web crawler daemon. It accepts start, stop, and
// list commands over TCP, crawls the started URLs recursively within
// their domains, and tracks which page led to which.
//
// Usage:
//
//	crawld serve
//	crawld start http://example.com
//	crawld stop http://example.com
//	crawld list
//
// See --help for all available options.
package main

// main is the entry point for crawld.
func main() {
	Execute()
}
