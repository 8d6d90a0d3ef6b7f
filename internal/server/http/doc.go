// Package httpserver exposes the queue, keyword, and poll operations as
// a JSON HTTP API. External worker processes drive the claim/submit
// contract through these endpoints.
package httpserver
