// Package server exposes report rendering and lookups over HTTP using gin.
//
// Routes:
//
//	POST /v1/render                  render a saved response
//	POST /v1/explain                 emptiness diagnosis for a response
//	GET  /v1/categories              category registry
//	GET  /v1/lookup/:category/:query fetch, render and record
//	GET  /v1/history                 recent searches
//	GET  /v1/stats                   search statistics
//
// Every /v1 route is rate limited per client IP.
package server
