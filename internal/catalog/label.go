package catalog

import (
	"fmt"
	"strings"
)

// Label is a same/different identity judgment. Values are stored lowercase;
// parsing is case-insensitive.
type Label string

const (
	LabelSame      Label = "same"
	LabelDifferent Label = "different"
)

// ParseLabel normalizes a raw label value. Anything outside the two-value
// enum is rejected.
func ParseLabel(raw string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case LabelSame:
		return LabelSame, nil
	case LabelDifferent:
		return LabelDifferent, nil
	default:
		return "", fmt.Errorf("invalid label %q (expected same or different)", raw)
	}
}

// Matches compares a decision against a stored ground-truth value
// case-insensitively. A ground-truth value outside the enum never matches,
// so malformed catalog data reads as an incorrect answer.
func (l Label) Matches(groundTruth string) bool {
	return string(l) == strings.ToLower(strings.TrimSpace(groundTruth))
}

func (l Label) String() string {
	return string(l)
}
