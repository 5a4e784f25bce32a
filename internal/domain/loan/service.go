package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"
)

type LoanService interface {
	CreateLoan(ctx context.Context, input CreateLoanInput, now time.Time) (*Loan, error)

	GetLoan(ctx context.Context, loanID string) (*Loan, error)

	ListLoans(ctx context.Context) ([]*Loan, error)

	GetLoanSchedule(ctx context.Context, loanID string) ([]Installment, error)

	PreviewLoan(ctx context.Context, principal Money, monthlyRatePercent float64, termMonths int) (Preview, error)

	ToggleInstallment(ctx context.Context, loanID string, sequenceNumber int, now time.Time) (*Installment, error)

	GetLoanSummary(ctx context.Context, loanID string, asOf time.Time) (*Summary, error)
}

// Summary is the derived per-loan view, recomputed on every read.
type Summary struct {
	LoanID        string
	TermMonths    int
	SettledCount  int
	OverdueCount  int
	TotalPayable  Money
	AmountSettled Money
	AmountPending Money
}

type loanServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewLoanService(r Repository, logger *slog.Logger) LoanService {
	return &loanServiceImpl{repo: r, logger: logger}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, input CreateLoanInput, now time.Time) (*Loan, error) {
	s.logger.Info("Creating new loan", "clientName", input.ClientName, "termMonths", input.TermMonths)

	newLoan, err := NewLoan(input, now)
	if err != nil {
		s.logger.Error("Failed to build new loan", slog.Any("error", err))
		monitoring.RecordLoanCreation("failure_validation")
		return nil, err
	}

	createdLoan, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.Error("Failed to store loan", "loanID", newLoan.ID, slog.Any("error", err))
		monitoring.RecordLoanCreation("failure_internal")
		return nil, fmt.Errorf("%w: failed to store loan: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanCreation("success")
	s.logger.Info("Loan created successfully", "loanID", createdLoan.ID, "periodicPayment", createdLoan.PeriodicPayment)
	return createdLoan, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID string) (*Loan, error) {
	s.logger.Info("Getting loan details", "loanID", loanID)
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return nil, err
		}
		s.logger.Error("Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context) ([]*Loan, error) {
	s.logger.Info("Listing loans")
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		s.logger.Error("Failed to list loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans: %v", apperrors.ErrInternalServer, err)
	}
	return loans, nil
}

func (s *loanServiceImpl) GetLoanSchedule(ctx context.Context, loanID string) ([]Installment, error) {
	s.logger.Info("Getting loan schedule", "loanID", loanID)
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return l.Schedule, nil
}

func (s *loanServiceImpl) PreviewLoan(ctx context.Context, principal Money, monthlyRatePercent float64, termMonths int) (Preview, error) {
	s.logger.Info("Computing loan preview", "principal", principal, "monthlyRatePercent", monthlyRatePercent, "termMonths", termMonths)

	if principal <= 0 {
		return Preview{}, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if monthlyRatePercent < 0 {
		return Preview{}, apperrors.NewValidationError("monthlyRatePercent", "must not be negative")
	}

	preview, err := ComputePreview(principal, monthlyRatePercent, termMonths)
	if err != nil {
		s.logger.Error("Failed to compute preview", slog.Any("error", err))
		return Preview{}, err
	}
	return preview, nil
}

func (s *loanServiceImpl) ToggleInstallment(ctx context.Context, loanID string, sequenceNumber int, now time.Time) (*Installment, error) {
	s.logger.Info("Toggling installment settlement", "loanID", loanID, "sequenceNumber", sequenceNumber)

	inst, err := s.repo.ToggleInstallment(ctx, loanID, sequenceNumber, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Toggle target not found", "loanID", loanID, "sequenceNumber", sequenceNumber)
			monitoring.RecordInstallmentToggle("failure_not_found")
			return nil, err
		}
		s.logger.Error("Failed to toggle installment", "loanID", loanID, "sequenceNumber", sequenceNumber, slog.Any("error", err))
		monitoring.RecordInstallmentToggle("failure_internal")
		return nil, fmt.Errorf("%w: failed to toggle installment: %v", apperrors.ErrInternalServer, err)
	}

	if inst.IsSettled {
		monitoring.RecordInstallmentToggle("settled")
	} else {
		monitoring.RecordInstallmentToggle("unsettled")
	}
	s.logger.Info("Installment toggled", "loanID", loanID, "sequenceNumber", sequenceNumber, "isSettled", inst.IsSettled)
	return inst, nil
}

func (s *loanServiceImpl) GetLoanSummary(ctx context.Context, loanID string, asOf time.Time) (*Summary, error) {
	s.logger.Info("Getting loan summary", "loanID", loanID)

	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	settled := l.SettledCount()
	return &Summary{
		LoanID:        l.ID,
		TermMonths:    l.TermMonths,
		SettledCount:  settled,
		OverdueCount:  l.OverdueCount(asOf),
		TotalPayable:  l.TotalPayable,
		AmountSettled: l.PeriodicPayment * float64(settled),
		AmountPending: l.PeriodicPayment * float64(l.TermMonths-settled),
	}, nil
}
