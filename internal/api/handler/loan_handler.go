package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"loan-ledger/internal/api/handler/dto"
	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
		now:     time.Now,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "loanID")
	if id == "" {
		return "", fmt.Errorf("loanID not found in URL path")
	}
	return id, nil
}

// CreateLoan handles the creation of a new loan with its full schedule.
//
// @Summary Create a new loan
// @Description Creates a loan for a client from principal, term in months and monthly interest rate. The payment schedule is generated as part of the same operation.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	now := h.now()
	createdLoan, err := h.service.CreateLoan(r.Context(), req.ToInput(), now)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(createdLoan, true, now))
}

// ListLoans returns every loan in the ledger, newest first.
//
// @Summary List loans
// @Description Lists all loans, most recently created first, without schedules.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "Loans successfully listed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	now := h.now()
	resp := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = dto.NewLoanResponse(l, false, now)
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLoan retrieves the details of a specific loan.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by ID. Add `include=schedule` to embed the schedule with each installment's status classified as of the request time.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param include query string false "Optional parameter to include the schedule (use 'schedule')"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	domainLoan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	includeSchedule := r.URL.Query().Get("include") == "schedule"
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(domainLoan, includeSchedule, h.now()))
}

// GetSummary returns the derived settled/overdue aggregate view of a loan.
//
// @Summary Retrieve loan summary
// @Description Returns settled and overdue installment counts plus settled and pending amounts, recomputed against the request time.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.SummaryResponse "Summary successfully retrieved"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/summary [get]
// @Security BearerAuth
func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	summary, err := h.service.GetLoanSummary(r.Context(), loanID, h.now())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}

// Preview quotes a prospective loan without creating it.
//
// @Summary Preview loan figures
// @Description Computes periodic payment, total payable and total interest for the given terms. The ledger is not touched.
// @Tags Loans
// @Produce json
// @Param principal query number true "Principal amount"
// @Param termMonths query int true "Term in months"
// @Param monthlyRatePercent query number true "Monthly interest rate in percent"
// @Success 200 {object} dto.PreviewResponse "Preview successfully computed"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /loans/preview [get]
// @Security BearerAuth
func (h *LoanHandler) Preview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	principal, err := strconv.ParseFloat(query.Get("principal"), 64)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid principal", apperrors.ErrInvalidArgument))
		return
	}
	termMonths, err := strconv.Atoi(query.Get("termMonths"))
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid termMonths", apperrors.ErrInvalidArgument))
		return
	}
	rate, err := strconv.ParseFloat(query.Get("monthlyRatePercent"), 64)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid monthlyRatePercent", apperrors.ErrInvalidArgument))
		return
	}

	preview, err := h.service.PreviewLoan(r.Context(), principal, rate, termMonths)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPreviewResponse(preview))
}

// ToggleInstallment flips the settlement state of one installment.
//
// @Summary Toggle installment settlement
// @Description Marks an unsettled installment as settled (stamping the settlement date) or reverts a settled one. Toggling twice restores the original state.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param sequenceNumber path int true "Installment sequence number"
// @Success 200 {object} dto.InstallmentResponse "Installment successfully toggled"
// @Failure 400 {object} dto.ErrorResponse "Invalid sequence number"
// @Failure 404 {object} dto.ErrorResponse "Loan or installment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/installments/{sequenceNumber}/toggle [post]
// @Security BearerAuth
func (h *LoanHandler) ToggleInstallment(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	sequenceNumber, err := strconv.Atoi(chi.URLParam(r, "sequenceNumber"))
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid sequence number: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	now := h.now()
	inst, err := h.service.ToggleInstallment(r.Context(), loanID, sequenceNumber, now)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewInstallmentResponse(*inst, now))
}
