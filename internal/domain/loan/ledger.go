package loan

import (
	"fmt"
	"sync"
	"time"

	"loan-ledger/internal/pkg/apperrors"
)

// Ledger holds every loan for the lifetime of the process, newest first.
// One writer mutates at a time; readers get deep copies of the committed
// state, so a snapshot handed out is never changed underneath the caller.
type Ledger struct {
	mu    sync.RWMutex
	loans []*Loan
}

func NewLedger() *Ledger {
	return &Ledger{loans: []*Loan{}}
}

// Add prepends a fully constructed loan. Construction and insertion are
// separate on purpose: a loan that fails to build never touches the ledger.
func (lg *Ledger) Add(l *Loan) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.loans = append([]*Loan{l}, lg.loans...)
}

func (lg *Ledger) Get(loanID string) (*Loan, error) {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	l := lg.find(loanID)
	if l == nil {
		return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}
	return l.snapshot(), nil
}

// List returns snapshots of all loans, newest first.
func (lg *Ledger) List() []*Loan {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	out := make([]*Loan, 0, len(lg.loans))
	for _, l := range lg.loans {
		out = append(out, l.snapshot())
	}
	return out
}

func (lg *Ledger) Len() int {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return len(lg.loans)
}

// ToggleInstallment flips the settlement flag of one installment. A flip to
// settled stamps SettledOn with now; the reverse flip clears it. Toggling
// twice restores the original state. Unknown loan or sequence numbers are
// reported instead of silently ignored.
func (lg *Ledger) ToggleInstallment(loanID string, sequenceNumber int, now time.Time) (Installment, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	l := lg.find(loanID)
	if l == nil {
		return Installment{}, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}

	for i := range l.Schedule {
		if l.Schedule[i].SequenceNumber != sequenceNumber {
			continue
		}

		inst := &l.Schedule[i]
		if inst.IsSettled {
			inst.IsSettled = false
			inst.SettledOn = nil
		} else {
			inst.IsSettled = true
			settledOn := now
			inst.SettledOn = &settledOn
		}

		out := *inst
		if out.SettledOn != nil {
			settledOn := *out.SettledOn
			out.SettledOn = &settledOn
		}
		return out, nil
	}

	return Installment{}, fmt.Errorf("%w: installment %d of loan %s", apperrors.ErrNotFound, sequenceNumber, loanID)
}

// find runs under the caller's lock.
func (lg *Ledger) find(loanID string) *Loan {
	for _, l := range lg.loans {
		if l.ID == loanID {
			return l
		}
	}
	return nil
}
