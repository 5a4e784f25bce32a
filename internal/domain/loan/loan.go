package loan

import (
	"math"
	"strings"
	"time"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type InstallmentStatus string

const (
	StatusSettled InstallmentStatus = "SETTLED"
	StatusOverdue InstallmentStatus = "OVERDUE"
	StatusDueSoon InstallmentStatus = "DUE_SOON"
	StatusPending InstallmentStatus = "PENDING"
)

// dueSoonWindowDays is the horizon within which an unsettled installment is
// reported as due soon rather than pending.
const dueSoonWindowDays = 7

// Installment is one scheduled payment within a loan. SettledOn is non-nil
// exactly when IsSettled is true.
type Installment struct {
	SequenceNumber int
	DueDate        time.Time
	Amount         Money
	IsSettled      bool
	SettledOn      *time.Time
}

type Loan struct {
	ID                 string
	ClientName         string
	ClientEmail        string
	ClientPhone        string
	Principal          Money
	TermMonths         int
	MonthlyRatePercent float64
	PeriodicPayment    Money
	TotalPayable       Money
	CreatedAt          time.Time
	Schedule           []Installment
}

// CreateLoanInput carries the raw loan-creation request. Phone is optional,
// email format checking stays with the caller.
type CreateLoanInput struct {
	ClientName         string
	ClientEmail        string
	ClientPhone        string
	Principal          Money
	TermMonths         int
	MonthlyRatePercent float64
}

func (in CreateLoanInput) validate() error {
	if strings.TrimSpace(in.ClientName) == "" {
		return apperrors.NewValidationError("clientName", "must not be empty")
	}
	if strings.TrimSpace(in.ClientEmail) == "" {
		return apperrors.NewValidationError("clientEmail", "must not be empty")
	}
	if in.Principal <= 0 {
		return apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if in.TermMonths <= 0 {
		return apperrors.NewValidationError("termMonths", "must be positive")
	}
	if in.MonthlyRatePercent < 0 {
		return apperrors.NewValidationError("monthlyRatePercent", "must not be negative")
	}
	return nil
}

// NewLoan validates the input, derives the payment figures and builds the
// full schedule with createdAt as the reference start date. The loan and its
// schedule come back as one unit; nothing is mutated afterwards except the
// settlement flags on individual installments.
func NewLoan(in CreateLoanInput, createdAt time.Time) (*Loan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	payment, err := PeriodicPayment(in.Principal, in.MonthlyRatePercent, in.TermMonths)
	if err != nil {
		return nil, err
	}

	schedule, err := GenerateSchedule(createdAt, payment, in.TermMonths)
	if err != nil {
		return nil, err
	}

	return &Loan{
		ID:                 uuid.NewString(),
		ClientName:         in.ClientName,
		ClientEmail:        in.ClientEmail,
		ClientPhone:        in.ClientPhone,
		Principal:          in.Principal,
		TermMonths:         in.TermMonths,
		MonthlyRatePercent: in.MonthlyRatePercent,
		PeriodicPayment:    payment,
		TotalPayable:       payment * float64(in.TermMonths),
		CreatedAt:          createdAt,
		Schedule:           schedule,
	}, nil
}

// ClassifyStatus resolves an installment's display status against asOf.
// Settled wins over every date-derived state; the remaining states are
// decided on whole days until the due date, rounded up toward it.
func ClassifyStatus(inst Installment, asOf time.Time) InstallmentStatus {
	if inst.IsSettled {
		return StatusSettled
	}

	days := daysUntil(inst.DueDate, asOf)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= dueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusPending
	}
}

func daysUntil(dueDate, asOf time.Time) int {
	return int(math.Ceil(dueDate.Sub(asOf).Hours() / 24))
}

// SettledCount reports how many installments are marked settled.
func (l *Loan) SettledCount() int {
	count := 0
	for _, inst := range l.Schedule {
		if inst.IsSettled {
			count++
		}
	}
	return count
}

// OverdueCount reports how many installments classify as overdue at asOf.
func (l *Loan) OverdueCount(asOf time.Time) int {
	count := 0
	for _, inst := range l.Schedule {
		if ClassifyStatus(inst, asOf) == StatusOverdue {
			count++
		}
	}
	return count
}

// snapshot returns a deep copy so readers never observe in-place mutation.
func (l *Loan) snapshot() *Loan {
	cp := *l
	cp.Schedule = make([]Installment, len(l.Schedule))
	copy(cp.Schedule, l.Schedule)
	for i := range cp.Schedule {
		if cp.Schedule[i].SettledOn != nil {
			settledOn := *cp.Schedule[i].SettledOn
			cp.Schedule[i].SettledOn = &settledOn
		}
	}
	return &cp
}
