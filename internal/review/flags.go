package review

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/annolab/facepair/internal/catalog"
)

// IssueType classifies a flagged pair.
type IssueType string

const (
	IssueWrongGroundTruth IssueType = "WRONG_GROUND_TRUTH"
	IssueBrokenUnusable   IssueType = "BROKEN_UNUSABLE"
)

// ParseIssueType validates a raw issue type value.
func ParseIssueType(raw string) (IssueType, error) {
	switch IssueType(strings.ToUpper(strings.TrimSpace(raw))) {
	case IssueWrongGroundTruth:
		return IssueWrongGroundTruth, nil
	case IssueBrokenUnusable:
		return IssueBrokenUnusable, nil
	default:
		return "", fmt.Errorf("invalid issue type %q", raw)
	}
}

// Flag marks one catalog pair for offline correction. Flags stay in the
// reviewer's session and are exported as a file, never sent to the ledger.
type Flag struct {
	Index              int       `json:"index"`
	ImageA             string    `json:"image_a"`
	ImageB             string    `json:"image_b"`
	CurrentGroundTruth string    `json:"current_ground_truth"`
	SuggestedTruth     string    `json:"suggested_ground_truth"` // same, different or empty
	Issue              IssueType `json:"issue_type"`
	Notes              string    `json:"notes"`
}

// Validate checks the enum fields. The suggested ground truth may be empty
// (e.g. for broken pairs where no correction applies).
func (f Flag) Validate() error {
	if _, err := ParseIssueType(string(f.Issue)); err != nil {
		return err
	}
	if f.SuggestedTruth != "" {
		if _, err := catalog.ParseLabel(f.SuggestedTruth); err != nil {
			return fmt.Errorf("suggested ground truth: %w", err)
		}
	}
	return nil
}

// FlagList is an ordered, session-scoped flag collection. Appends keep
// every entry; readers see one flag per pair index, the most recent win,
// positioned where it was last flagged.
type FlagList struct {
	entries []Flag
}

func NewFlagList() *FlagList {
	return &FlagList{}
}

// Add validates, normalizes and appends a flag.
func (fl *FlagList) Add(f Flag) error {
	issue, err := ParseIssueType(string(f.Issue))
	if err != nil {
		return err
	}
	f.Issue = issue
	if f.SuggestedTruth != "" {
		label, err := catalog.ParseLabel(f.SuggestedTruth)
		if err != nil {
			return fmt.Errorf("suggested ground truth: %w", err)
		}
		f.SuggestedTruth = label.String()
	}
	fl.entries = append(fl.entries, f)
	return nil
}

// Deduplicated returns one flag per pair index, keeping the most recent
// entry and its append order.
func (fl *FlagList) Deduplicated() []Flag {
	seen := make(map[int]struct{}, len(fl.entries))
	reversed := make([]Flag, 0, len(fl.entries))
	for i := len(fl.entries) - 1; i >= 0; i-- {
		f := fl.entries[i]
		if _, dup := seen[f.Index]; dup {
			continue
		}
		seen[f.Index] = struct{}{}
		reversed = append(reversed, f)
	}
	out := make([]Flag, len(reversed))
	for i, f := range reversed {
		out[len(out)-1-i] = f
	}
	return out
}

// exportHeader is the flag export file schema.
var exportHeader = []string{
	"index", "A", "B", "current_ground_truth", "suggested_ground_truth", "issue_type", "notes",
}

// WriteCSV writes the deduplicated flag list as CSV, one row per uniquely
// flagged pair index.
func (fl *FlagList) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}
	for _, f := range fl.Deduplicated() {
		row := []string{
			strconv.Itoa(f.Index),
			f.ImageA,
			f.ImageB,
			f.CurrentGroundTruth,
			f.SuggestedTruth,
			string(f.Issue),
			f.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing flag for pair %d: %w", f.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
