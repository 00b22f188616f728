package ledger

import (
	"context"
	"sync"
)

// Memory is an in-memory Ledger used by tests and local development runs
// where no spreadsheet is configured. It keeps the same append-log
// semantics as the sheet: no dedup, duplicates tolerated by readers.
type Memory struct {
	mu      sync.Mutex
	records []AnnotationRecord

	// AppendErr, when set, makes every Append fail. Tests use it to
	// simulate a remote outage.
	AppendErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, rec AnnotationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) CompletedPairs(ctx context.Context, annotatorID string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var completed []int
	for _, rec := range m.records {
		if rec.AnnotatorID == annotatorID {
			completed = append(completed, rec.PairIndex)
		}
	}
	return completed
}

// Records returns a copy of everything appended so far.
func (m *Memory) Records() []AnnotationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AnnotationRecord, len(m.records))
	copy(out, m.records)
	return out
}
