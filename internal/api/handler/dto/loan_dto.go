package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreateLoanRequest struct {
	ClientName         string  `json:"clientName"`
	ClientEmail        string  `json:"clientEmail"`
	ClientPhone        string  `json:"clientPhone,omitempty"`
	Principal          float64 `json:"principal"`
	TermMonths         int     `json:"termMonths"`
	MonthlyRatePercent float64 `json:"monthlyRatePercent"`
}

func (r *CreateLoanRequest) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return fmt.Errorf("clientName must not be empty")
	}
	if strings.TrimSpace(r.ClientEmail) == "" {
		return fmt.Errorf("clientEmail must not be empty")
	}
	if r.Principal <= 0 {
		return fmt.Errorf("principal must be greater than zero")
	}
	if r.TermMonths <= 0 {
		return fmt.Errorf("termMonths must be positive")
	}
	if r.MonthlyRatePercent < 0 {
		return fmt.Errorf("monthlyRatePercent must not be negative")
	}
	return nil
}

func (r *CreateLoanRequest) ToInput() loan.CreateLoanInput {
	return loan.CreateLoanInput{
		ClientName:         r.ClientName,
		ClientEmail:        r.ClientEmail,
		ClientPhone:        r.ClientPhone,
		Principal:          r.Principal,
		TermMonths:         r.TermMonths,
		MonthlyRatePercent: r.MonthlyRatePercent,
	}
}

type LoanResponse struct {
	ID                 string                `json:"id"`
	ClientName         string                `json:"clientName"`
	ClientEmail        string                `json:"clientEmail"`
	ClientPhone        string                `json:"clientPhone,omitempty"`
	Principal          string                `json:"principal"`
	TermMonths         int                   `json:"termMonths"`
	MonthlyRatePercent string                `json:"monthlyRatePercent"`
	PeriodicPayment    string                `json:"periodicPayment"`
	TotalPayable       string                `json:"totalPayable"`
	CreatedAt          time.Time             `json:"createdAt"`
	SettledCount       int                   `json:"settledCount"`
	OverdueCount       int                   `json:"overdueCount"`
	Schedule           []InstallmentResponse `json:"schedule,omitempty"`
}

type InstallmentResponse struct {
	SequenceNumber int        `json:"sequenceNumber"`
	DueDate        string     `json:"dueDate"`
	Amount         string     `json:"amount"`
	IsSettled      bool       `json:"isSettled"`
	SettledOn      *time.Time `json:"settledOn,omitempty"`
	Status         string     `json:"status"`
}

type PreviewResponse struct {
	PeriodicPayment string `json:"periodicPayment"`
	TotalPayable    string `json:"totalPayable"`
	TotalInterest   string `json:"totalInterest"`
}

type SummaryResponse struct {
	LoanID        string `json:"loanId"`
	TermMonths    int    `json:"termMonths"`
	SettledCount  int    `json:"settledCount"`
	OverdueCount  int    `json:"overdueCount"`
	TotalPayable  string `json:"totalPayable"`
	AmountSettled string `json:"amountSettled"`
	AmountPending string `json:"amountPending"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func formatMoney(amount loan.Money) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func NewLoanResponse(domainLoan *loan.Loan, includeSchedule bool, asOf time.Time) LoanResponse {
	resp := LoanResponse{
		ID:                 domainLoan.ID,
		ClientName:         domainLoan.ClientName,
		ClientEmail:        domainLoan.ClientEmail,
		ClientPhone:        domainLoan.ClientPhone,
		Principal:          formatMoney(domainLoan.Principal),
		TermMonths:         domainLoan.TermMonths,
		MonthlyRatePercent: decimal.NewFromFloat(domainLoan.MonthlyRatePercent).String(),
		PeriodicPayment:    formatMoney(domainLoan.PeriodicPayment),
		TotalPayable:       formatMoney(domainLoan.TotalPayable),
		CreatedAt:          domainLoan.CreatedAt,
		SettledCount:       domainLoan.SettledCount(),
		OverdueCount:       domainLoan.OverdueCount(asOf),
	}

	if includeSchedule && domainLoan.Schedule != nil {
		resp.Schedule = make([]InstallmentResponse, len(domainLoan.Schedule))
		for i, inst := range domainLoan.Schedule {
			resp.Schedule[i] = NewInstallmentResponse(inst, asOf)
		}
	}

	return resp
}

func NewInstallmentResponse(inst loan.Installment, asOf time.Time) InstallmentResponse {
	return InstallmentResponse{
		SequenceNumber: inst.SequenceNumber,
		DueDate:        inst.DueDate.Format(dateLayout),
		Amount:         formatMoney(inst.Amount),
		IsSettled:      inst.IsSettled,
		SettledOn:      inst.SettledOn,
		Status:         string(loan.ClassifyStatus(inst, asOf)),
	}
}

func NewPreviewResponse(p loan.Preview) PreviewResponse {
	return PreviewResponse{
		PeriodicPayment: formatMoney(p.PeriodicPayment),
		TotalPayable:    formatMoney(p.TotalPayable),
		TotalInterest:   formatMoney(p.TotalInterest),
	}
}

func NewSummaryResponse(s *loan.Summary) SummaryResponse {
	return SummaryResponse{
		LoanID:        s.LoanID,
		TermMonths:    s.TermMonths,
		SettledCount:  s.SettledCount,
		OverdueCount:  s.OverdueCount,
		TotalPayable:  formatMoney(s.TotalPayable),
		AmountSettled: formatMoney(s.AmountSettled),
		AmountPending: formatMoney(s.AmountPending),
	}
}
