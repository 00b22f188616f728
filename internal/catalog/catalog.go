package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PairRecord is one row of the pair catalog: two face images plus the
// stored ground-truth identity label.
// GroundTruth is kept as the raw stored string: values outside the
// same/different enum are not rejected at load time, they just never match
// any decision (see Label.Matches).
type PairRecord struct {
	Index       int    `json:"index"`
	ImageA      string `json:"image_a"`
	ImageB      string `json:"image_b"`
	GroundTruth string `json:"ground_truth"`
	CelebID     string `json:"celeb_id"`
}

// Catalog is the immutable in-memory pair table. Records keep CSV order,
// which defines the annotation order for every annotator.
type Catalog struct {
	records []PairRecord
	byIndex map[int]int // pair index -> position in records
}

var requiredColumns = []string{"index", "A", "B", "ground_truth"}

// Load reads the pair catalog from a CSV file. The file must contain the
// columns index, A, B and ground_truth; celeb_id is optional. Any missing
// column, unparsable row or duplicate index fails the whole load - there is
// no partial catalog.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog file %s is empty", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("catalog is missing required column %q", name)
		}
	}
	celebCol, hasCeleb := cols["celeb_id"]

	c := &Catalog{
		records: make([]PairRecord, 0, len(rows)-1),
		byIndex: make(map[int]int, len(rows)-1),
	}
	for n, row := range rows[1:] {
		line := n + 2 // 1-based, after the header
		index, err := strconv.Atoi(strings.TrimSpace(row[cols["index"]]))
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: invalid index %q", line, row[cols["index"]])
		}
		if _, dup := c.byIndex[index]; dup {
			return nil, fmt.Errorf("catalog line %d: duplicate index %d", line, index)
		}
		rec := PairRecord{
			Index:       index,
			ImageA:      strings.TrimSpace(row[cols["A"]]),
			ImageB:      strings.TrimSpace(row[cols["B"]]),
			GroundTruth: strings.TrimSpace(row[cols["ground_truth"]]),
		}
		if rec.ImageA == "" || rec.ImageB == "" {
			return nil, fmt.Errorf("catalog line %d: empty image filename", line)
		}
		if hasCeleb {
			rec.CelebID = strings.TrimSpace(row[celebCol])
		}
		c.byIndex[index] = len(c.records)
		c.records = append(c.records, rec)
	}
	if len(c.records) == 0 {
		return nil, fmt.Errorf("catalog file %s has a header but no pairs", path)
	}

	return c, nil
}

// Len returns the number of pairs in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}

// ByIndex resolves a pair index to its record.
func (c *Catalog) ByIndex(index int) (PairRecord, bool) {
	pos, ok := c.byIndex[index]
	if !ok {
		return PairRecord{}, false
	}
	return c.records[pos], true
}

// Indices returns all pair indices in catalog order.
func (c *Catalog) Indices() []int {
	out := make([]int, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Index
	}
	return out
}

// Records returns all pairs in catalog order. The returned slice is a copy;
// the catalog itself stays immutable.
func (c *Catalog) Records() []PairRecord {
	out := make([]PairRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Remaining returns the catalog indices not present in completed, preserving
// catalog order. The first element is always the next pair to annotate.
func (c *Catalog) Remaining(completed map[int]struct{}) []int {
	out := make([]int, 0, len(c.records))
	for _, rec := range c.records {
		if _, done := completed[rec.Index]; !done {
			out = append(out, rec.Index)
		}
	}
	return out
}
