package annotation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/annolab/facepair/internal/catalog"
)

// Rules are the static validation minimums, fixed before session start.
type Rules struct {
	MinAnnotatorIDLength int
	MinExplanationLength int
}

// ValidationError is a purely local input failure, surfaced inline next to
// the offending field. It never changes session state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateAnnotatorID checks the minimum id length after trimming.
// Lengths are character counts, not byte counts.
func (r Rules) ValidateAnnotatorID(id string) error {
	trimmed := strings.TrimSpace(id)
	if n := utf8.RuneCountInString(trimmed); n < r.MinAnnotatorIDLength {
		return &ValidationError{
			Field: "annotator_id",
			Message: fmt.Sprintf("annotator id must be at least %d characters (%d/%d)",
				r.MinAnnotatorIDLength, n, r.MinAnnotatorIDLength),
		}
	}
	return nil
}

// ValidateDecision requires exactly one of the two labels.
func (r Rules) ValidateDecision(decision string) (catalog.Label, error) {
	if strings.TrimSpace(decision) == "" {
		return "", &ValidationError{
			Field:   "decision",
			Message: "please select whether the faces show the same person or different people",
		}
	}
	label, err := catalog.ParseLabel(decision)
	if err != nil {
		return "", &ValidationError{
			Field:   "decision",
			Message: fmt.Sprintf("decision must be %q or %q", catalog.LabelSame, catalog.LabelDifferent),
		}
	}
	return label, nil
}

// ValidateExplanation checks the minimum trimmed length. The same rule
// applies to the initial explanation and the review reflection.
func (r Rules) ValidateExplanation(field, text string) error {
	trimmed := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(trimmed); n < r.MinExplanationLength {
		return &ValidationError{
			Field: field,
			Message: fmt.Sprintf("%s must be at least %d characters (%d/%d)",
				field, r.MinExplanationLength, n, r.MinExplanationLength),
		}
	}
	return nil
}
