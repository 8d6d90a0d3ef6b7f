// Package queue implements Redscout's classification work queue: a
// polling-based, at-least-once job queue with lease-based claim /
// process / complete delivery over the kv adapter.
//
// # Keyspace
//
//	q/item/{stamp}/{postID}   - queue item (stamp: sortable ms+seq hex)
//	q/lease/{workerID}/{postID} - lease marker for active-worker reporting
//	q/result/{postID}         - classification verdict, outlives the item
//	q/stats                   - incremental aggregate counters
//
// The creation stamp is embedded in the item key so the retention sweep can
// age items from key enumeration alone, without reading values.
//
// # Item lifecycle
//
//  1. Enqueue: items written pending, stats total/pending incremented
//  2. ClaimNext: first pending item leased to a worker, marker written
//  3. SubmitResult: item completed, result record written, marker removed
//  4. ResetStuck: expired leases cleared back to pending (or failed once
//     the attempt budget is spent)
//  5. Cleanup: completed items past the retention window deleted
//
// # At-least-once semantics
//
// Delivery is at-least-once: a worker that crashes after classifying but
// before submitting leaves its item leased until the stuck sweep returns it
// to pending, and the next worker repeats the work. Completion simply
// overwrites, so duplicate processing is harmless. There is no fan-out, no
// priority scheduling, and no exactly-once guarantee.
//
// Claims serialize through an in-process mutex: the backing store has no
// compare-and-swap, so the scan-then-lease window is closed by routing all
// claims through this one dispatcher (workers in other processes reach it
// over HTTP).
package queue
