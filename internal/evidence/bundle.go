package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// #region bundle

// Bundle is the immutable, fingerprinted evidence for one run.
// Fields are unexported; readers get copies.
type Bundle struct {
	runID       string
	items       []Item
	index       map[string]Item
	fingerprint string
	collectedAt time.Time
}

// BuildBundle copies items into a new Bundle and computes its fingerprint.
// Item values are normalized into [0, 1]: NaN becomes 0, infinities and other
// out-of-range values are clamped.
// When several items share a source, Lookup returns the last one in item order.
func BuildBundle(runID string, items []Item, collectedAt time.Time) *Bundle {
	owned := normalizeItems(items)

	index := make(map[string]Item, len(owned))
	for _, it := range owned {
		index[it.Source] = it
	}

	return &Bundle{
		runID:       runID,
		items:       owned,
		index:       index,
		fingerprint: Fingerprint(runID, owned),
		collectedAt: collectedAt,
	}
}

// #endregion bundle

// #region accessors

// RunID returns the run this bundle belongs to.
func (b *Bundle) RunID() string {
	if b == nil {
		return ""
	}
	return b.runID
}

// Items returns a copy of the items in collection order.
func (b *Bundle) Items() []Item {
	if b == nil {
		return nil
	}
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of items.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Fingerprint returns the hex SHA-256 digest computed at construction.
func (b *Bundle) Fingerprint() string {
	if b == nil {
		return ""
	}
	return b.fingerprint
}

// CollectedAt returns the collection timestamp. It is not part of the fingerprint.
func (b *Bundle) CollectedAt() time.Time {
	if b == nil {
		return time.Time{}
	}
	return b.collectedAt
}

// Lookup returns the item indexed under source.
func (b *Bundle) Lookup(source string) (Item, bool) {
	if b == nil {
		return Item{}, false
	}
	it, ok := b.index[source]
	return it, ok
}

// VerifyFingerprint recomputes the digest and reports whether it still matches.
func (b *Bundle) VerifyFingerprint() bool {
	if b == nil {
		return false
	}
	return Fingerprint(b.runID, b.items) == b.fingerprint
}

// #endregion accessors

// #region fingerprint

type canonicalBundle struct {
	RunID string `json:"run_id"`
	Items []Item `json:"items"`
}

// Fingerprint hashes run_id plus the items sorted by (source, item_id, value).
// Input order does not affect the result. Values are normalized the same way
// BuildBundle does, so a bundle and its raw items hash alike.
func Fingerprint(runID string, items []Item) string {
	sorted := normalizeItems(items)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.Value < b.Value
	})

	payload, err := json.Marshal(canonicalBundle{RunID: runID, Items: sorted})
	if err != nil {
		// normalizeItems leaves only finite values, so this is unreachable.
		panic(fmt.Sprintf("fingerprint %s: %v", runID, err))
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// normalizeItems returns a copy of items with every value mapped into [0, 1].
func normalizeItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if math.IsNaN(it.Value) {
			it.Value = 0
		}
		it.Value = clamp(it.Value)
		out[i] = it
	}
	return out
}

// #endregion fingerprint
