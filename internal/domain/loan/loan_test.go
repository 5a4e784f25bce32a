package loan

import (
	"testing"
	"time"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func validInput() CreateLoanInput {
	return CreateLoanInput{
		ClientName:         "Maria Lopez",
		ClientEmail:        "maria@example.com",
		ClientPhone:        "+34 600 000 000",
		Principal:          10_000,
		TermMonths:         12,
		MonthlyRatePercent: 15,
	}
}

func TestNewLoan(t *testing.T) {
	createdAt := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("should create a loan with a full schedule", func(t *testing.T) {
		l, err := NewLoan(validInput(), createdAt)
		assert.NoError(t, err)
		assert.NotNil(t, l)

		assert.NotEmpty(t, l.ID)
		assert.Equal(t, "Maria Lopez", l.ClientName)
		assert.Equal(t, createdAt, l.CreatedAt)
		assert.Len(t, l.Schedule, l.TermMonths)
		assert.InDelta(t, 1844.81, l.PeriodicPayment, 0.01)
		assert.InDelta(t, l.PeriodicPayment*12, l.TotalPayable, 1e-9)

		sum := 0.0
		for _, inst := range l.Schedule {
			sum += inst.Amount
		}
		assert.InDelta(t, l.TotalPayable, sum, 0.01)
	})

	t.Run("generated loans get distinct IDs", func(t *testing.T) {
		a, err := NewLoan(validInput(), createdAt)
		assert.NoError(t, err)
		b, err := NewLoan(validInput(), createdAt)
		assert.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("phone is optional", func(t *testing.T) {
		in := validInput()
		in.ClientPhone = ""
		l, err := NewLoan(in, createdAt)
		assert.NoError(t, err)
		assert.Empty(t, l.ClientPhone)
	})

	t.Run("zero rate is accepted", func(t *testing.T) {
		in := validInput()
		in.Principal = 6_000
		in.TermMonths = 6
		in.MonthlyRatePercent = 0

		l, err := NewLoan(in, createdAt)
		assert.NoError(t, err)
		assert.Equal(t, 1_000.0, l.PeriodicPayment)
		assert.Equal(t, 6_000.0, l.TotalPayable)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*CreateLoanInput)
		}{
			{"empty client name", func(in *CreateLoanInput) { in.ClientName = "  " }},
			{"empty client email", func(in *CreateLoanInput) { in.ClientEmail = "" }},
			{"zero principal", func(in *CreateLoanInput) { in.Principal = 0 }},
			{"negative principal", func(in *CreateLoanInput) { in.Principal = -100 }},
			{"zero term", func(in *CreateLoanInput) { in.TermMonths = 0 }},
			{"negative rate", func(in *CreateLoanInput) { in.MonthlyRatePercent = -1 }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := validInput()
				tc.mutate(&in)
				l, err := NewLoan(in, createdAt)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Nil(t, l)
			})
		}
	})
}

func TestClassifyStatus(t *testing.T) {
	asOf := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	t.Run("settled wins regardless of due date", func(t *testing.T) {
		settledOn := asOf.AddDate(0, 0, -30)
		inst := Installment{
			SequenceNumber: 1,
			DueDate:        asOf.AddDate(0, -6, 0),
			Amount:         100,
			IsSettled:      true,
			SettledOn:      &settledOn,
		}
		assert.Equal(t, StatusSettled, ClassifyStatus(inst, asOf))
	})

	t.Run("past due date is overdue", func(t *testing.T) {
		inst := Installment{DueDate: asOf.AddDate(0, 0, -1), Amount: 100}
		assert.Equal(t, StatusOverdue, ClassifyStatus(inst, asOf))

		// same installment marked settled flips to settled
		settledOn := asOf
		inst.IsSettled = true
		inst.SettledOn = &settledOn
		assert.Equal(t, StatusSettled, ClassifyStatus(inst, asOf))
	})

	t.Run("due within seven days is due soon", func(t *testing.T) {
		for _, days := range []int{0, 1, 3, 7} {
			inst := Installment{DueDate: asOf.AddDate(0, 0, days), Amount: 100}
			assert.Equal(t, StatusDueSoon, ClassifyStatus(inst, asOf), "days=%d", days)
		}
	})

	t.Run("due beyond seven days is pending", func(t *testing.T) {
		inst := Installment{DueDate: asOf.AddDate(0, 0, 8), Amount: 100}
		assert.Equal(t, StatusPending, ClassifyStatus(inst, asOf))

		inst = Installment{DueDate: asOf.AddDate(0, 6, 0), Amount: 100}
		assert.Equal(t, StatusPending, ClassifyStatus(inst, asOf))
	})

	t.Run("partial days round up toward the due date", func(t *testing.T) {
		// an hour past due still counts as day zero, not overdue
		inst := Installment{DueDate: asOf.Add(-1 * time.Hour), Amount: 100}
		assert.Equal(t, StatusDueSoon, ClassifyStatus(inst, asOf))

		inst = Installment{DueDate: asOf.Add(-25 * time.Hour), Amount: 100}
		assert.Equal(t, StatusOverdue, ClassifyStatus(inst, asOf))
	})
}

func TestLoanCounts(t *testing.T) {
	createdAt := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	in := validInput()
	in.TermMonths = 6
	l, err := NewLoan(in, createdAt)
	assert.NoError(t, err)

	// three months and two days in, the first three installments are past due
	asOf := createdAt.AddDate(0, 3, 2)

	assert.Equal(t, 0, l.SettledCount())
	assert.Equal(t, 3, l.OverdueCount(asOf))

	settledOn := asOf
	l.Schedule[0].IsSettled = true
	l.Schedule[0].SettledOn = &settledOn

	assert.Equal(t, 1, l.SettledCount())
	assert.Equal(t, 2, l.OverdueCount(asOf))
}
