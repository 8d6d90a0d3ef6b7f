package queue

import (
	"fmt"
	"strings"

	"github.com/redscout/redscout/pkg/id"
)

// Key prefixes for queue data structures.
const (
	itemPrefix   = "q/item/"
	leasePrefix  = "q/lease/"
	resultPrefix = "q/result/"
	statsKey     = "q/stats"
)

// itemKey builds a queue item key. The stamp's hex form sorts
// chronologically, so enumeration order is creation order and the retention
// sweep can age keys without reading values.
func itemKey(stamp id.ID, postID string) string {
	return itemPrefix + stamp.String() + "/" + postID
}

// itemPattern enumerates all queue items.
func itemPattern() string { return itemPrefix + "*" }

// parseItemKey extracts the creation timestamp and post id from an item key.
func parseItemKey(key string) (createdMs int64, postID string, err error) {
	rest, ok := strings.CutPrefix(key, itemPrefix)
	if !ok {
		return 0, "", fmt.Errorf("queue: %q is not an item key", key)
	}
	stampHex, postID, ok := strings.Cut(rest, "/")
	if !ok || postID == "" {
		return 0, "", fmt.Errorf("queue: malformed item key %q", key)
	}
	stamp, err := id.Parse(stampHex)
	if err != nil {
		return 0, "", fmt.Errorf("queue: malformed item key %q: %w", key, err)
	}
	return stamp.Ms(), postID, nil
}

// leaseKey builds a lease marker key, enumerable per worker.
func leaseKey(workerID, postID string) string {
	return leasePrefix + workerID + "/" + postID
}

// leasePattern enumerates all lease markers.
func leasePattern() string { return leasePrefix + "*" }

// resultKey builds a result record key. Keyed by post id, not queue key, so
// verdicts outlive pruned items.
func resultKey(postID string) string { return resultPrefix + postID }
