// Package main provides the entry point for the lookupreport CLI.
//
// lookupreport turns responses from loosely-structured lookup APIs into
// aligned plain-text reports. It can render saved responses, fetch live
// ones, keep a local search history and serve everything over HTTP.
//
// Usage:
//
//	lookupreport render gst 27AAPFU0939F1ZV response.json
//	lookupreport lookup mobile 9876543210
//	lookupreport history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
