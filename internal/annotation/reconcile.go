package annotation

import (
	"context"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/ledger"
)

// Reconcile computes the completed pair set for an annotator.
//
// The hybrid policy: a cached set from the current session wins outright,
// so the remote ledger is queried once per login rather than on every UI
// refresh. Without a cache the set is initialized from the ledger, which
// fails open to empty. Either way the result is intersected with the
// current catalog so stale indices from older catalog revisions drop out.
func Reconcile(ctx context.Context, annotatorID string, cat *catalog.Catalog, cached map[int]struct{}, l ledger.Ledger) map[int]struct{} {
	var source map[int]struct{}
	if cached != nil {
		source = cached
	} else {
		source = make(map[int]struct{})
		if l != nil {
			for _, index := range l.CompletedPairs(ctx, annotatorID) {
				source[index] = struct{}{}
			}
		}
	}

	completed := make(map[int]struct{}, len(source))
	for index := range source {
		if _, ok := cat.ByIndex(index); ok {
			completed[index] = struct{}{}
		}
	}
	return completed
}
