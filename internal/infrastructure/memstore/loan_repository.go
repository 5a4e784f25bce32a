package memstore

import (
	"context"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/monitoring"
)

// LoanRepository adapts the in-process Ledger to the domain Repository
// interface. All state lives in memory for the lifetime of the process and
// is reset on restart; there is no durable store behind it.
type LoanRepository struct {
	ledger *loan.Ledger
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(ledger *loan.Ledger, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{ledger: ledger, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		monitoring.RecordLedgerOp("create_loan", "canceled", time.Since(start))
		return nil, err
	}

	r.ledger.Add(l)
	monitoring.RecordLedgerOp("create_loan", "success", time.Since(start))
	r.logger.DebugContext(ctx, "Loan stored", "loanID", l.ID, "ledgerSize", r.ledger.Len())

	created, err := r.ledger.Get(l.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID string) (*loan.Loan, error) {
	start := time.Now()
	l, err := r.ledger.Get(loanID)
	if err != nil {
		monitoring.RecordLedgerOp("get_loan", "not_found", time.Since(start))
		return nil, err
	}
	monitoring.RecordLedgerOp("get_loan", "success", time.Since(start))
	return l, nil
}

func (r *LoanRepository) ListLoans(ctx context.Context) ([]*loan.Loan, error) {
	start := time.Now()
	loans := r.ledger.List()
	monitoring.RecordLedgerOp("list_loans", "success", time.Since(start))
	return loans, nil
}

func (r *LoanRepository) ToggleInstallment(ctx context.Context, loanID string, sequenceNumber int, now time.Time) (*loan.Installment, error) {
	start := time.Now()
	inst, err := r.ledger.ToggleInstallment(loanID, sequenceNumber, now)
	if err != nil {
		monitoring.RecordLedgerOp("toggle_installment", "not_found", time.Since(start))
		return nil, err
	}
	monitoring.RecordLedgerOp("toggle_installment", "success", time.Since(start))
	return &inst, nil
}
