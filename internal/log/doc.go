// Package log provides secure logging built on log/slog.
//
// SecureHandler wraps any slog.Handler and rewrites attributes before they
// reach it:
//   - credentials (Authorization, X-Api-Key, tokens, passwords) are
//     replaced with MaskValue
//   - personal identifiers (the lookup query, mobile and Aadhaar numbers,
//     UPI handles, registration numbers) keep only their last four
//     characters
//   - 10 to 12 digit runs inside any string, such as a query embedded in
//     an upstream URL, are masked the same way
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching", "category", "mobile", "query", "9876543210")
//	// query=******3210
package log
