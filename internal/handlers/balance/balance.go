package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/dto"
	"github.com/samirahpartel/kirtbank/pkg/auth"
	"github.com/samirahpartel/kirtbank/pkg/utils"
)

type Service interface {
	CreateBalance(ctx context.Context, userID int) (*domain.Balance, error)
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
	SetBalances(ctx context.Context, isAdmin bool, userID int, checking, savings, usdt int64) (*domain.Balance, error)
}

type BalanceHandler struct {
	accountService Service
}

func New(accountService Service) *BalanceHandler {
	return &BalanceHandler{
		accountService: accountService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Description	Retrieve the checking, savings and usdt buckets for the authenticated user.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Bucket amounts and total"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.accountService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// SetBalances godoc
//
//	@Summary		Overwrite a user's balances
//	@Description	Administrative absolute overwrite of all three buckets. Every changed bucket leaves an adjustment record in the transaction log.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		dto.SetBalancesRequestDTO	true	"Absolute bucket amounts"
//	@Success		200		{object}	dto.BalanceResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Admin access required"
//	@Failure		404		{object}	utils.Response	"Unknown account"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/{id}/balances [put]
func (h *BalanceHandler) SetBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req dto.SetBalancesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Checking.IsNegative() || req.Savings.IsNegative() || req.USDT.IsNegative() {
		utils.RespondWithError(w, http.StatusBadRequest, "Bucket amounts must be non-negative")
		return
	}

	balance, err := h.accountService.SetBalances(r.Context(), auth.IsAdmin(r.Context()), userID,
		domain.CentsFromDecimal(req.Checking),
		domain.CentsFromDecimal(req.Savings),
		domain.CentsFromDecimal(req.USDT))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
		case errors.Is(err, domain.ErrInvalidAccount):
			utils.RespondWithError(w, http.StatusNotFound, "Unknown account")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}
