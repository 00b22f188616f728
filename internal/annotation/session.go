// Package annotation holds the per-annotator session state machine and the
// progress reconciliation against the remote ledger. Persistence happens
// only inside transitions; rendering reads the session through the
// side-effect-free accessors.
package annotation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/ledger"
)

// State is the screen the session is currently on.
type State string

const (
	StateInstructions       State = "instructions"
	StateAnnotating         State = "annotating"
	StateReviewingIncorrect State = "reviewing_incorrect"
	StateAllComplete        State = "all_complete"
)

// ErrWrongState is returned when a transition is triggered from a state
// that does not accept it.
var ErrWrongState = errors.New("action not allowed in current state")

// Snapshot captures the pair and the in-flight decision at submit time. It
// renders the review screen and later builds the final record, so the
// outcome stays consistent even though the underlying form is long gone.
type Snapshot struct {
	Pair        catalog.PairRecord `json:"pair"`
	Decision    catalog.Label      `json:"decision"`
	Explanation string             `json:"explanation"`
}

// Session is the transient state of one annotator's browser session. It is
// never persisted; only the terminal AnnotationRecords reach the ledger.
type Session struct {
	rules     Rules
	catalog   *catalog.Catalog
	annotator string

	completed        map[int]struct{} // nil until reconciled at login
	pending          *Snapshot        // non-nil exactly while reviewing an incorrect answer
	showInstructions bool

	now func() time.Time
}

// NewSession creates a fresh session on the instructions screen.
func NewSession(cat *catalog.Catalog, rules Rules) *Session {
	return &Session{
		rules:            rules,
		catalog:          cat,
		showInstructions: true,
		now:              time.Now,
	}
}

// State derives the current screen from the session fields.
func (s *Session) State() State {
	if s.showInstructions || s.annotator == "" {
		return StateInstructions
	}
	if s.pending != nil {
		return StateReviewingIncorrect
	}
	if len(s.catalog.Remaining(s.completed)) == 0 {
		return StateAllComplete
	}
	return StateAnnotating
}

// AnnotatorID returns the logged-in annotator id, empty before login.
func (s *Session) AnnotatorID() string {
	return s.annotator
}

// Progress returns completed and total pair counts.
func (s *Session) Progress() (completed, total int) {
	return len(s.completed), s.catalog.Len()
}

// Pending returns the snapshot under review, nil outside review.
func (s *Session) Pending() *Snapshot {
	return s.pending
}

// CurrentPair returns the next pair to annotate: the first remaining pair
// in catalog order. During review it is the snapshotted pair.
func (s *Session) CurrentPair() (catalog.PairRecord, bool) {
	if s.pending != nil {
		return s.pending.Pair, true
	}
	remaining := s.catalog.Remaining(s.completed)
	if len(remaining) == 0 {
		return catalog.PairRecord{}, false
	}
	rec, ok := s.catalog.ByIndex(remaining[0])
	return rec, ok
}

// Login validates the annotator id and reconciles progress. Logging in
// again as the same annotator keeps the cached completed set (no ledger
// re-query); a different id discards it and reconciles from scratch.
func (s *Session) Login(ctx context.Context, annotatorID string, l ledger.Ledger) error {
	id := strings.TrimSpace(annotatorID)
	if err := s.rules.ValidateAnnotatorID(id); err != nil {
		return err
	}

	var cached map[int]struct{}
	if id == s.annotator {
		cached = s.completed
	}
	s.annotator = id
	s.completed = Reconcile(ctx, id, s.catalog, cached, l)
	s.pending = nil
	s.showInstructions = false
	return nil
}

// Submit records a decision for the current pair. A correct decision is
// persisted immediately and the session advances; an incorrect one is
// snapshotted and the session enters review without touching the ledger.
// Persistence failure leaves the pair incomplete so it is re-presented.
func (s *Session) Submit(ctx context.Context, l ledger.Ledger, decision, explanation string) error {
	if s.State() != StateAnnotating {
		return fmt.Errorf("%w: submit requires the annotation screen", ErrWrongState)
	}
	label, err := s.rules.ValidateDecision(decision)
	if err != nil {
		return err
	}
	if err := s.rules.ValidateExplanation("explanation", explanation); err != nil {
		return err
	}

	pair, ok := s.CurrentPair()
	if !ok {
		return fmt.Errorf("%w: no pair remaining", ErrWrongState)
	}

	if !label.Matches(pair.GroundTruth) {
		s.pending = &Snapshot{Pair: pair, Decision: label, Explanation: explanation}
		return nil
	}

	rec := s.buildRecord(pair, label, explanation, true, "")
	if err := l.Append(ctx, rec); err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	s.markComplete(pair.Index)
	return nil
}

// SubmitFollowup finishes the review of an incorrect answer. The record is
// only persisted, and the pair only marked complete, when the reflection
// passes validation and the append succeeds.
func (s *Session) SubmitFollowup(ctx context.Context, l ledger.Ledger, reflection string) error {
	if s.State() != StateReviewingIncorrect {
		return fmt.Errorf("%w: no incorrect answer under review", ErrWrongState)
	}
	if err := s.rules.ValidateExplanation("followup", reflection); err != nil {
		return err
	}

	snap := s.pending
	rec := s.buildRecord(snap.Pair, snap.Decision, snap.Explanation, false, reflection)
	if err := l.Append(ctx, rec); err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	s.markComplete(snap.Pair.Index)
	s.pending = nil
	return nil
}

// ViewInstructions shows the instructions screen without discarding any
// progress or identity.
func (s *Session) ViewInstructions() {
	s.showInstructions = true
}

// ContinueAnnotating leaves the instructions screen. It requires a prior
// login.
func (s *Session) ContinueAnnotating() error {
	if s.annotator == "" {
		return fmt.Errorf("%w: no annotator logged in", ErrWrongState)
	}
	s.showInstructions = false
	return nil
}

// SwitchAnnotator discards identity and progress entirely, forcing a fresh
// reconciliation on the next login.
func (s *Session) SwitchAnnotator() {
	s.annotator = ""
	s.completed = nil
	s.pending = nil
	s.showInstructions = true
}

// Restart empties the completed set for a re-annotation pass. Only offered
// from the all-complete screen, and only as an explicit user action.
func (s *Session) Restart() error {
	if s.State() != StateAllComplete {
		return fmt.Errorf("%w: restart requires all pairs completed", ErrWrongState)
	}
	s.completed = make(map[int]struct{})
	return nil
}

// Completed returns a copy of the completed pair set.
func (s *Session) Completed() map[int]struct{} {
	out := make(map[int]struct{}, len(s.completed))
	for i := range s.completed {
		out[i] = struct{}{}
	}
	return out
}

func (s *Session) markComplete(index int) {
	if s.completed == nil {
		s.completed = make(map[int]struct{})
	}
	s.completed[index] = struct{}{}
}

func (s *Session) buildRecord(pair catalog.PairRecord, decision catalog.Label, explanation string, correct bool, followup string) ledger.AnnotationRecord {
	return ledger.AnnotationRecord{
		Timestamp:           s.now(),
		AnnotatorID:         s.annotator,
		PairIndex:           pair.Index,
		ImageA:              pair.ImageA,
		ImageB:              pair.ImageB,
		GroundTruth:         strings.ToLower(strings.TrimSpace(pair.GroundTruth)),
		CelebID:             pair.CelebID,
		HumanDecision:       decision.String(),
		InitialExplanation:  explanation,
		IsCorrect:           correct,
		FollowupExplanation: followup,
	}
}
