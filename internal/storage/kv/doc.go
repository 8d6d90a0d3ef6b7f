// Package kv provides the uniform key-value adapter every Redscout
// component stores state through. It exposes get/set/delete plus pattern
// key enumeration over structured (JSON-serialized) records, with a durable
// Pebble backend and an in-memory fallback.
//
// A pattern contains at most one "*" wildcard. A trailing wildcard matches
// any remainder ("q/lease/*"); an embedded wildcard matches any middle
// chunk ("q/lease/*/post-1").
//
// The adapter offers no transactions, no multi-key atomicity, and no TTL.
// Missing keys are reported as not-found results, never errors; backend
// failures propagate to the caller.
package kv
