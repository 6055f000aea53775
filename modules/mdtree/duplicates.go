// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"sort"

	"github.com/emirpasic/gods/maps/hashmap"
)

// DuplicateEntry is one row of the duplicates report: a diff key that was
// produced more than once while parsing a single branch.
type DuplicateEntry struct {
	Branch  string
	Key     string
	Content string
	Count   int
}

type dupRecord struct {
	content string
	count   int
}

func dupMapKey(branch, key string) string {
	return branch + "\x00" + key
}

// DuplicateTracker accumulates (branch, diffKey) occurrence counts during
// parse (C8). It is a sanity check, not a fatal condition: legitimate
// MD5-fallback collisions and genuinely duplicated named entries both show
// up here without aborting the run.
type DuplicateTracker struct {
	counts *hashmap.Map
}

// NewDuplicateTracker returns an empty tracker.
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{counts: hashmap.New()}
}

// Record notes one occurrence of key (with its leaf content) on branch.
func (d *DuplicateTracker) Record(branch, key, content string) {
	mk := dupMapKey(branch, key)
	if v, ok := d.counts.Get(mk); ok {
		rec := v.(*dupRecord)
		rec.count++
		return
	}
	d.counts.Put(mk, &dupRecord{content: content, count: 1})
}

// Report returns every key recorded more than once, sorted by branch then
// key for deterministic CSV output.
func (d *DuplicateTracker) Report() []DuplicateEntry {
	var out []DuplicateEntry
	for _, mk := range d.counts.Keys() {
		v, _ := d.counts.Get(mk)
		rec := v.(*dupRecord)
		if rec.count <= 1 {
			continue
		}
		mkStr := mk.(string)
		branch, key := splitDupMapKey(mkStr)
		out = append(out, DuplicateEntry{Branch: branch, Key: key, Content: rec.content, Count: rec.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Branch != out[j].Branch {
			return out[i].Branch < out[j].Branch
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func splitDupMapKey(mk string) (branch, key string) {
	for i := 0; i < len(mk); i++ {
		if mk[i] == 0 {
			return mk[:i], mk[i+1:]
		}
	}
	return "", mk
}
