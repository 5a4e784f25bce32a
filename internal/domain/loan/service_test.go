package loan

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateLoan(ctx context.Context, l *Loan) (*Loan, error) {
	args := m.Called(ctx, l)
	if rf, ok := args.Get(0).(func(context.Context, *Loan) *Loan); ok {
		return rf(ctx, l), args.Error(1)
	}
	if created, ok := args.Get(0).(*Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetLoanByID(ctx context.Context, loanID string) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListLoans(ctx context.Context) ([]*Loan, error) {
	args := m.Called(ctx)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ToggleInstallment(ctx context.Context, loanID string, sequenceNumber int, now time.Time) (*Installment, error) {
	args := m.Called(ctx, loanID, sequenceNumber, now)
	if inst, ok := args.Get(0).(*Installment); ok {
		return inst, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestServiceCreateLoan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates and stores a loan", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		repo.On("CreateLoan", mock.Anything, mock.AnythingOfType("*loan.Loan")).
			Return(func(_ context.Context, l *Loan) *Loan { return l }, nil).Once()

		created, err := svc.CreateLoan(ctx, validInput(), now)
		assert.NoError(t, err)
		require.NotNil(t, created)
		assert.Len(t, created.Schedule, created.TermMonths)
		repo.AssertExpectations(t)
	})

	t.Run("validation failure never reaches the repository", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		in := validInput()
		in.Principal = -1

		created, err := svc.CreateLoan(ctx, in, now)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Nil(t, created)
		repo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	})

	t.Run("repository failure surfaces as internal error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		repo.On("CreateLoan", mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Once()

		created, err := svc.CreateLoan(ctx, validInput(), now)
		assert.ErrorIs(t, err, apperrors.ErrInternalServer)
		assert.Nil(t, created)
		repo.AssertExpectations(t)
	})
}

func TestServiceGetLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through the stored loan", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		stored := &Loan{ID: "loan-1", TermMonths: 6}
		repo.On("GetLoanByID", mock.Anything, "loan-1").Return(stored, nil).Once()

		got, err := svc.GetLoan(ctx, "loan-1")
		assert.NoError(t, err)
		assert.Equal(t, stored, got)
		repo.AssertExpectations(t)
	})

	t.Run("not found is preserved", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		repo.On("GetLoanByID", mock.Anything, "missing").
			Return(nil, apperrors.ErrNotFound).Once()

		_, err := svc.GetLoan(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestServicePreviewLoan(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewLoanService(repo, logger)

	t.Run("computes the preview triple", func(t *testing.T) {
		preview, err := svc.PreviewLoan(ctx, 6_000, 0, 6)
		assert.NoError(t, err)
		assert.Equal(t, 1_000.0, preview.PeriodicPayment)
		assert.Equal(t, 6_000.0, preview.TotalPayable)
		assert.Equal(t, 0.0, preview.TotalInterest)
	})

	t.Run("rejects non-positive principal", func(t *testing.T) {
		_, err := svc.PreviewLoan(ctx, 0, 15, 12)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := svc.PreviewLoan(ctx, 1_000, -1, 12)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects non-positive term", func(t *testing.T) {
		_, err := svc.PreviewLoan(ctx, 1_000, 15, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}

func TestServiceToggleInstallment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns the toggled installment", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		settledOn := now
		toggled := &Installment{SequenceNumber: 2, IsSettled: true, SettledOn: &settledOn}
		repo.On("ToggleInstallment", mock.Anything, "loan-1", 2, now).Return(toggled, nil).Once()

		inst, err := svc.ToggleInstallment(ctx, "loan-1", 2, now)
		assert.NoError(t, err)
		assert.Equal(t, toggled, inst)
		repo.AssertExpectations(t)
	})

	t.Run("not found is preserved", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewLoanService(repo, logger)

		repo.On("ToggleInstallment", mock.Anything, "loan-1", 99, now).
			Return(nil, apperrors.ErrNotFound).Once()

		_, err := svc.ToggleInstallment(ctx, "loan-1", 99, now)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestServiceGetLoanSummary(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewLoanService(repo, logger)

	createdAt := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	in := validInput()
	in.TermMonths = 6
	l, err := NewLoan(in, createdAt)
	require.NoError(t, err)

	settledOn := createdAt.AddDate(0, 1, 1)
	l.Schedule[0].IsSettled = true
	l.Schedule[0].SettledOn = &settledOn

	repo.On("GetLoanByID", mock.Anything, l.ID).Return(l, nil).Once()

	asOf := createdAt.AddDate(0, 3, 2)
	summary, err := svc.GetLoanSummary(ctx, l.ID, asOf)
	assert.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.SettledCount)
	assert.Equal(t, 2, summary.OverdueCount)
	assert.InDelta(t, l.PeriodicPayment, summary.AmountSettled, 1e-9)
	assert.InDelta(t, l.PeriodicPayment*5, summary.AmountPending, 1e-9)
	repo.AssertExpectations(t)
}
