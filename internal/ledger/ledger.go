// Package ledger wraps the remote annotation spreadsheet as an append-only
// row store. The sheet is the system of record: rows are never updated or
// deleted, duplicates are possible and readers must tolerate them.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Header is the fixed first row of the sheet. Column order is the wire
// contract - existing stored data depends on it.
var Header = []string{
	"timestamp", "annotator_id", "pair_index", "image_a", "image_b",
	"ground_truth", "celeb_id", "human_decision", "initial_explanation",
	"is_correct", "followup_explanation",
}

// ErrUnavailable is returned by Append when the service is running without
// a reachable ledger. Submissions are rejected at the persistence boundary,
// the UI keeps the form contents for retry.
var ErrUnavailable = errors.New("annotation ledger is not available")

// AnnotationRecord is one persisted outcome for an (annotator, pair).
type AnnotationRecord struct {
	Timestamp           time.Time `json:"timestamp"`
	AnnotatorID         string    `json:"annotator_id"`
	PairIndex           int       `json:"pair_index"`
	ImageA              string    `json:"image_a"`
	ImageB              string    `json:"image_b"`
	GroundTruth         string    `json:"ground_truth"`
	CelebID             string    `json:"celeb_id"`
	HumanDecision       string    `json:"human_decision"`
	InitialExplanation  string    `json:"initial_explanation"`
	IsCorrect           bool      `json:"is_correct"`
	FollowupExplanation string    `json:"followup_explanation"`
}

// Row renders the record as a sheet row in Header order.
func (r AnnotationRecord) Row() []any {
	return []any{
		r.Timestamp.Format(time.RFC3339),
		r.AnnotatorID,
		strconv.Itoa(r.PairIndex),
		r.ImageA,
		r.ImageB,
		r.GroundTruth,
		r.CelebID,
		r.HumanDecision,
		r.InitialExplanation,
		strconv.FormatBool(r.IsCorrect),
		r.FollowupExplanation,
	}
}

// Ledger is the capability the session layer needs from the row store.
type Ledger interface {
	// Append writes one annotation row. No transactionality, no dedup.
	Append(ctx context.Context, rec AnnotationRecord) error
	// CompletedPairs returns the pair indices this annotator has rows for.
	// It fails open: any read failure yields an empty result rather than
	// blocking login.
	CompletedPairs(ctx context.Context, annotatorID string) []int
}

// parseRow extracts (annotator, pairIndex) from a raw sheet row following
// Header order. Rows with a missing or non-numeric pair index are skipped
// by returning ok=false.
func parseRow(row []any) (annotator string, pairIndex int, ok bool) {
	if len(row) < 3 {
		return "", 0, false
	}
	annotator, _ = row[1].(string)
	raw, _ := row[2].(string)
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", 0, false
	}
	return annotator, index, true
}

// Disabled is the no-persistence fallback used when the sheet cannot be
// reached at startup. The UI stays usable for composing answers; saving
// fails visibly.
type Disabled struct{}

func (Disabled) Append(ctx context.Context, rec AnnotationRecord) error {
	return ErrUnavailable
}

func (Disabled) CompletedPairs(ctx context.Context, annotatorID string) []int {
	return nil
}
