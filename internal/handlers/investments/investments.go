package investments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/dto"
	"github.com/samirahpartel/kirtbank/internal/service/investservice"
	"github.com/samirahpartel/kirtbank/pkg/auth"
	"github.com/samirahpartel/kirtbank/pkg/utils"
)

type Service interface {
	Plans() []domain.InvestmentPlan
	Open(ctx context.Context, userID int, planName string, amount int64, sourceBucket string) (*domain.Investment, error)
	List(ctx context.Context, userID int) ([]domain.Investment, error)
}

type InvestmentHandler struct {
	investService Service
}

func New(investService Service) *InvestmentHandler {
	return &InvestmentHandler{
		investService: investService,
	}
}

// GetPlans godoc
//
//	@Summary		List investment plans
//	@Description	The fixed-term plan catalog with rates, terms and principal bounds.
//	@Tags			Investments
//	@Produce		json
//	@Success		200	{array}	dto.PlanResponseDTO
//	@Router			/api/investments/plans [get]
func (h *InvestmentHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPlanListResponse(h.investService.Plans()))
}

// Open godoc
//
//	@Summary		Open an investment
//	@Description	Lock principal from a bucket into a fixed-term plan. The debit, the position and its log entry land atomically.
//	@Tags			Investments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.OpenInvestmentRequestDTO	true	"Plan, amount and source bucket"
//	@Success		201		{object}	dto.InvestmentResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/investments [post]
func (h *InvestmentHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.OpenInvestmentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bucket := req.Account
	if bucket == "" {
		bucket = domain.BucketChecking
	}

	inv, err := h.investService.Open(r.Context(), userID, req.Plan, domain.CentsFromDecimal(req.Amount), bucket)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			utils.RespondWithError(w, http.StatusPaymentRequired, "Insufficient funds")
		case errors.Is(err, domain.ErrInvalidAccount):
			utils.RespondWithError(w, http.StatusNotFound, "Unknown account")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponse(inv, time.Now()))
}

// List godoc
//
//	@Summary		List own investments
//	@Description	All investments of the authenticated user with live progress and expected profit.
//	@Tags			Investments
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.InvestmentResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/investments [get]
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	investments, err := h.investService.List(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch investments")
		return
	}

	now := time.Now()
	response := make([]dto.InvestmentResponseDTO, 0, len(investments))
	for i := range investments {
		response = append(response, toResponse(&investments[i], now))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toResponse(inv *domain.Investment, now time.Time) dto.InvestmentResponseDTO {
	return dto.InvestmentResponseDTO{
		ID:             inv.ID,
		Plan:           inv.Plan,
		Amount:         domain.CentsToFloat(inv.Amount),
		Rate:           inv.Rate,
		SourceBucket:   inv.SourceBucket,
		StartDate:      inv.StartDate,
		MaturityDate:   inv.MaturityDate,
		Progress:       investservice.Progress(inv.StartDate, inv.MaturityDate, now),
		ExpectedProfit: domain.CentsToFloat(investservice.ExpectedProfit(inv.Amount, inv.Rate)),
		Redeemed:       inv.RedeemedAt != nil,
	}
}
