package catalog

import "testing"

func testRecords() []PairRecord {
	return []PairRecord{
		{Index: 1, ImageA: "lfw_0001_a.jpg", ImageB: "lfw_0001_b.jpg", GroundTruth: "same"},
		{Index: 2, ImageA: "lfw_0002_a.jpg", ImageB: "celeba_0002_b.jpg", GroundTruth: "DIFFERENT"},
		{Index: 5, ImageA: "celeba_0005_a.jpg", ImageB: "celeba_0005_b.jpg", GroundTruth: "same"},
	}
}

func testCatalogFromRecords(recs []PairRecord) *Catalog {
	c := &Catalog{byIndex: make(map[int]int, len(recs))}
	for _, rec := range recs {
		c.byIndex[rec.Index] = len(c.records)
		c.records = append(c.records, rec)
	}
	return c
}

func TestFilter_Empty(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	got := Filter{}.Apply(c)

	if len(got) != 3 {
		t.Errorf("expected empty filter to keep all 3 pairs, got %d", len(got))
	}
}

func TestFilter_Dataset(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	got := Filter{Dataset: "lfw"}.Apply(c)

	if len(got) != 2 {
		t.Fatalf("expected 2 lfw pairs, got %d", len(got))
	}
	if got[0].Index != 1 || got[1].Index != 2 {
		t.Errorf("expected pairs [1 2], got [%d %d]", got[0].Index, got[1].Index)
	}
}

func TestFilter_GroundTruth(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	// Filter value and stored value differ in case.
	got := Filter{GroundTruth: "different"}.Apply(c)

	if len(got) != 1 {
		t.Fatalf("expected 1 different pair, got %d", len(got))
	}
	if got[0].Index != 2 {
		t.Errorf("expected pair 2, got %d", got[0].Index)
	}
}

func TestFilter_Search(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	// Substring present only in ImageB of pair 2.
	got := Filter{Search: "CELEBA_0002"}.Apply(c)

	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Index != 2 {
		t.Errorf("expected pair 2, got %d", got[0].Index)
	}
}

func TestFilter_Combined(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	got := Filter{Dataset: "celeba", GroundTruth: "same"}.Apply(c)

	if len(got) != 1 || got[0].Index != 5 {
		t.Errorf("expected only pair 5, got %v", got)
	}
}

func TestDatasetPrefix(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"lfw_0001_a.jpg", "lfw"},
		{"celeba_0005_b.jpg", "celeba"},
		{"portrait.jpg", "portrait.jpg"},
		{"_leading.jpg", "_leading.jpg"},
	}

	for _, tt := range tests {
		if got := DatasetPrefix(tt.filename); got != tt.want {
			t.Errorf("DatasetPrefix(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestDatasets_SortedDistinct(t *testing.T) {
	c := testCatalogFromRecords(testRecords())

	got := c.Datasets()

	if len(got) != 2 || got[0] != "celeba" || got[1] != "lfw" {
		t.Errorf("expected [celeba lfw], got %v", got)
	}
}
