// Package review implements the super-user catalog browser: read-only
// pagination over the full pair catalog with filtering, search and a
// session-scoped flag list for metadata problems. It never touches the
// annotation ledger.
package review

import (
	"fmt"
	"io"

	"github.com/annolab/facepair/internal/catalog"
)

// Browser navigates a filtered view of the catalog. Position is always
// clamped to the current view, so a narrowing filter can never leave the
// cursor dangling.
type Browser struct {
	catalog *catalog.Catalog
	filter  catalog.Filter
	view    []catalog.PairRecord
	pos     int
	flags   *FlagList
}

// NewBrowser starts on the unfiltered catalog at the first pair.
func NewBrowser(cat *catalog.Catalog) *Browser {
	return &Browser{
		catalog: cat,
		view:    catalog.Filter{}.Apply(cat),
		flags:   NewFlagList(),
	}
}

// SetFilter replaces the active filter, recomputes the view and clamps the
// position into it.
func (b *Browser) SetFilter(f catalog.Filter) {
	b.filter = f
	b.view = f.Apply(b.catalog)
	b.clamp()
}

// Filter returns the active filter.
func (b *Browser) Filter() catalog.Filter {
	return b.filter
}

// Len returns the size of the filtered view.
func (b *Browser) Len() int {
	return len(b.view)
}

// Position returns the zero-based cursor within the filtered view.
func (b *Browser) Position() int {
	return b.pos
}

// Current returns the pair under the cursor. ok is false when the filter
// matches nothing.
func (b *Browser) Current() (catalog.PairRecord, bool) {
	if len(b.view) == 0 {
		return catalog.PairRecord{}, false
	}
	return b.view[b.pos], true
}

// Prev moves the cursor back one pair, stopping at the start of the view.
func (b *Browser) Prev() {
	if b.pos > 0 {
		b.pos--
	}
}

// Next moves the cursor forward one pair, stopping at the end of the view.
func (b *Browser) Next() {
	if b.pos < len(b.view)-1 {
		b.pos++
	}
}

// Jump moves the cursor to the pair with the given index. Without an exact
// match in the filtered view it snaps to the nearest index by absolute
// difference.
func (b *Browser) Jump(index int) error {
	if len(b.view) == 0 {
		return fmt.Errorf("no pairs match the current filter")
	}
	best := 0
	bestDist := -1
	for i, rec := range b.view {
		if rec.Index == index {
			b.pos = i
			return nil
		}
		dist := rec.Index - index
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	b.pos = best
	return nil
}

// Flag records a metadata problem for a pair. The pair must exist in the
// catalog; flagging is independent of the current filter.
func (b *Browser) Flag(f Flag) error {
	rec, ok := b.catalog.ByIndex(f.Index)
	if !ok {
		return fmt.Errorf("pair %d is not in the catalog", f.Index)
	}
	// Fill the catalog-derived columns so the export is self-contained.
	f.ImageA = rec.ImageA
	f.ImageB = rec.ImageB
	f.CurrentGroundTruth = rec.GroundTruth
	return b.flags.Add(f)
}

// Flags returns the deduplicated flag list, most recent flag per pair.
func (b *Browser) Flags() []Flag {
	return b.flags.Deduplicated()
}

// ExportCSV writes the deduplicated flag list to w.
func (b *Browser) ExportCSV(w io.Writer) error {
	return b.flags.WriteCSV(w)
}

func (b *Browser) clamp() {
	if b.pos >= len(b.view) {
		b.pos = len(b.view) - 1
	}
	if b.pos < 0 {
		b.pos = 0
	}
}
