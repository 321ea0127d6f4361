// Package ledger owns the in-memory payment record collection and the port
// to its snapshot persistence backends.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"mensalidades/internal/core"
)

// Repository persists the full record collection as one snapshot. Load must
// tolerate a missing or corrupt source by returning an empty sequence.
type Repository interface {
	Load(ctx context.Context) ([]core.Payment, error)
	Save(ctx context.Context, records []core.Payment) error
}

// Ledger is the ordered payment record collection. Insertion order is the
// chronological add order and is preserved across mutations; duplicates of
// (child, month) are tolerated and lookups take the first match.
type Ledger struct {
	mu      sync.Mutex
	records []core.Payment
}

// New creates a ledger over the given records.
func New(records []core.Payment) *Ledger {
	return &Ledger{records: records}
}

// Open loads the repository snapshot into a fresh ledger.
func Open(ctx context.Context, repo Repository) (*Ledger, error) {
	records, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return New(records), nil
}

// Snapshot returns a copy of the records in order.
func (l *Ledger) Snapshot() []core.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Payment, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Add appends a record.
func (l *Ledger) Add(p core.Payment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, p)
}

// Update replaces the record at index i.
func (l *Ledger) Update(i int, p core.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.records) {
		return fmt.Errorf("record index %d out of range", i)
	}
	l.records[i] = p
	return nil
}

// RemoveWhere deletes every record matching pred, preserving the order of
// the remaining records. Returns the number removed.
func (l *Ledger) RemoveWhere(pred func(core.Payment) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0]
	removed := 0
	for _, p := range l.records {
		if pred(p) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	l.records = kept
	return removed
}

// RenameChild updates the name on every record of oldName. Returns the
// number of records touched.
func (l *Ledger) RenameChild(oldName, newName string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for i := range l.records {
		if l.records[i].ChildName == oldName {
			l.records[i].ChildName = newName
			n++
		}
	}
	return n
}

// FindMonth returns the first record for (child, month), any school.
func (l *Ledger) FindMonth(child string, month core.Month) (core.Payment, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.records {
		if p.ChildName == child && p.Month == month {
			return p, true
		}
	}
	return core.Payment{}, false
}

// UpsertMonth replaces the first (child, month) record with p, or appends p
// when none exists. Reports whether an existing record was replaced.
func (l *Ledger) UpsertMonth(p core.Payment) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].ChildName == p.ChildName && l.records[i].Month == p.Month {
			l.records[i] = p
			return true
		}
	}
	l.records = append(l.records, p)
	return false
}

// RemoveMonth deletes the first (child, month) record, if any.
func (l *Ledger) RemoveMonth(child string, month core.Month) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].ChildName == child && l.records[i].Month == month {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return true
		}
	}
	return false
}

// SetSchool rewrites the school on the first record matching (child, month,
// currentSchool).
func (l *Ledger) SetSchool(child string, month core.Month, currentSchool, newSchool string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		p := l.records[i]
		if p.ChildName == child && p.Month == month && p.School == currentSchool {
			l.records[i].School = newSchool
			return true
		}
	}
	return false
}
