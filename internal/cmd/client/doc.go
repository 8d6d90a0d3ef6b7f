// Package client provides the `redscout` command-line client.
//
// The CLI talks to the redscout HTTP API to manage keywords, inspect and
// maintain the queue, and run external worker processes from a terminal.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080 and can be overridden with the
// REDSCOUT_HTTP environment variable.
//
// Usage
//
//	redscout keyword add --name golang
//	redscout keyword list
//	redscout keyword rm --name golang
//
//	redscout queue status
//	redscout queue reset --timeout-ms 300000
//	redscout queue cleanup --max-age-ms 604800000
//
//	redscout poll
//
//	# Run a worker against a remote server
//	redscout worker start --classifier-url https://api.openai.com/v1
package client
