package loan

import (
	"context"
	"time"
)

type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID string) (*Loan, error)

	ListLoans(ctx context.Context) ([]*Loan, error)

	ToggleInstallment(ctx context.Context, loanID string, sequenceNumber int, now time.Time) (*Installment, error)
}
