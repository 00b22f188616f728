package catalog

import (
	"sort"
	"strings"
)

// Filter narrows the catalog for the review browser. Zero values mean
// "no restriction" for each criterion.
type Filter struct {
	// Dataset matches the filename prefix up to the first underscore,
	// e.g. "lfw" matches lfw_0423_a.jpg.
	Dataset string `json:"dataset"`
	// GroundTruth keeps only pairs whose stored label matches
	// case-insensitively ("same" or "different").
	GroundTruth string `json:"ground_truth"`
	// Search keeps pairs where either filename contains the substring
	// (case-insensitive).
	Search string `json:"search"`
}

// DatasetPrefix extracts the dataset name from a filename following the
// <dataset>_<rest> convention. Filenames without an underscore are their
// own dataset.
func DatasetPrefix(filename string) string {
	if i := strings.IndexByte(filename, '_'); i > 0 {
		return filename[:i]
	}
	return filename
}

// Matches reports whether a pair passes all active criteria.
func (f Filter) Matches(rec PairRecord) bool {
	if f.Dataset != "" && DatasetPrefix(rec.ImageA) != f.Dataset {
		return false
	}
	if f.GroundTruth != "" && !strings.EqualFold(strings.TrimSpace(rec.GroundTruth), strings.TrimSpace(f.GroundTruth)) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rec.ImageA), needle) &&
			!strings.Contains(strings.ToLower(rec.ImageB), needle) {
			return false
		}
	}
	return true
}

// Apply returns the pairs passing the filter, preserving catalog order.
func (f Filter) Apply(c *Catalog) []PairRecord {
	out := make([]PairRecord, 0, c.Len())
	for _, rec := range c.records {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Datasets lists the distinct dataset prefixes present in the catalog,
// sorted, for populating the review filter dropdown.
func (c *Catalog) Datasets() []string {
	seen := make(map[string]struct{})
	for _, rec := range c.records {
		seen[DatasetPrefix(rec.ImageA)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
