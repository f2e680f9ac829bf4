package clinic

import (
	"fmt"
	"sort"
	"time"
)

// Entry is a queue position: a reference to a store-owned patient and the
// moment it was inserted.
type Entry struct {
	Patient *Patient
	At      time.Time
}

// PatientFinder resolves patient identifiers. *EntityStore implements it.
type PatientFinder interface {
	FindPatient(id string) (*Patient, error)
}

// TriageQueue is the consultation queue. It keeps insertion order; the
// priority ordering is only ever a view.
type TriageQueue struct {
	entries []Entry
	now     func() time.Time
}

func NewTriageQueue() *TriageQueue {
	return &TriageQueue{now: time.Now}
}

// Enqueue appends p. A patient already queued is queued again.
func (q *TriageQueue) Enqueue(p *Patient) {
	q.entries = append(q.entries, Entry{Patient: p, At: q.now()})
}

func (q *TriageQueue) Len() int { return len(q.entries) }

// Count reports how many times p is currently queued.
func (q *TriageQueue) Count(p *Patient) int {
	n := 0
	for _, e := range q.entries {
		if e.Patient == p {
			n++
		}
	}
	return n
}

// Entries returns the queue contents in insertion order.
func (q *TriageQueue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// PriorityView returns the queue ordered by risk level, highest first.
// Patients with equal risk keep their queue order.
func (q *TriageQueue) PriorityView() []Entry {
	view := q.Entries()
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Patient.RiskLevel > view[j].Patient.RiskLevel
	})
	return view
}

// Remove looks the patient up through finder and drops its first queue entry.
func (q *TriageQueue) Remove(finder PatientFinder, patientID string) (*Patient, error) {
	p, err := finder.FindPatient(patientID)
	if err != nil {
		return nil, err
	}
	if !q.removeFirst(p) {
		return p, fmt.Errorf("%w: %s", ErrNotInQueue, patientID)
	}
	return p, nil
}

// DequeueOnCheckout drops the first queue entry for p.
func (q *TriageQueue) DequeueOnCheckout(p *Patient) error {
	if !q.removeFirst(p) {
		return fmt.Errorf("%w: %s", ErrNotInQueue, p.ID())
	}
	return nil
}

func (q *TriageQueue) removeFirst(p *Patient) bool {
	for i, e := range q.entries {
		if e.Patient == p {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// ArrivalLedger is the append-only record of registrations in arrival order.
type ArrivalLedger struct {
	entries []Entry
	now     func() time.Time
}

func NewArrivalLedger() *ArrivalLedger {
	return &ArrivalLedger{now: time.Now}
}

func (l *ArrivalLedger) Append(p *Patient) {
	l.entries = append(l.entries, Entry{Patient: p, At: l.now()})
}

func (l *ArrivalLedger) Len() int { return len(l.entries) }

// AllInOrder returns every arrival, oldest first.
func (l *ArrivalLedger) AllInOrder() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
