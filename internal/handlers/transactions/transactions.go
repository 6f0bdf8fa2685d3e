package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/dto"
	"github.com/samirahpartel/kirtbank/pkg/auth"
	"github.com/samirahpartel/kirtbank/pkg/utils"
	"github.com/samirahpartel/kirtbank/pkg/validate"
)

type Service interface {
	Submit(ctx context.Context, userID int, amount int64, method, bucket, receiptRef string) (*domain.Transaction, error)
	Resolve(ctx context.Context, isAdmin bool, txID uuid.UUID, decision string) (*domain.Transaction, error)
	PendingDeposits(ctx context.Context) ([]domain.Transaction, error)
	History(ctx context.Context, userID int) ([]domain.Transaction, error)
	Backfill(ctx context.Context, isAdmin bool, tx *domain.Transaction) (*domain.Transaction, error)
	Delete(ctx context.Context, isAdmin bool, txID uuid.UUID) error
}

const giftCardMethod = "gift-cards"

type TransactionHandler struct {
	depositService Service
	methods        map[string]struct{}
}

func New(depositService Service, methods []string) *TransactionHandler {
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowed[m] = struct{}{}
	}
	return &TransactionHandler{
		depositService: depositService,
		methods:        allowed,
	}
}

// SubmitDeposit godoc
//
//	@Summary		Submit a deposit for review
//	@Description	Record a deposit intent. The entry stays Pending and does not touch balances until a reviewer confirms it.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Replay-safe retry key"
//	@Param			request			body		dto.DepositRequestDTO	true	"Deposit request body"
//	@Success		202				{object}	dto.TransactionResponseDTO
//	@Failure		400				{object}	utils.Response	"Invalid request"
//	@Failure		401				{object}	utils.Response	"User not authorized"
//	@Failure		422				{object}	utils.Response	"Invalid gift card number"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/deposit [post]
func (h *TransactionHandler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := h.methods[req.Method]; !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown deposit method")
		return
	}
	bucket := req.Account
	if bucket == "" {
		bucket = domain.BucketChecking
	}
	if !domain.IsBucket(bucket) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown account bucket")
		return
	}
	if req.Method == giftCardMethod && !validate.IsLuhn(req.ReceiptRef) {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Invalid gift card number")
		return
	}

	tx, err := h.depositService.Submit(r.Context(), userID, domain.CentsFromDecimal(req.Amount), req.Method, bucket, req.ReceiptRef)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, dto.NewTransactionResponse(tx))
}

// GetHistory godoc
//
//	@Summary		Get own transaction history
//	@Description	Full transaction history for the authenticated user, newest first.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Success		204	{object}	utils.Response	"No transactions"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions [get]
func (h *TransactionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	history, err := h.depositService.History(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if len(history) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No transactions found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionListResponse(history))
}

// GetReviewQueue godoc
//
//	@Summary		Get the deposit review queue
//	@Description	All pending deposits across users, newest first. Reviewer only.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Admin access required"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/admin [get]
func (h *TransactionHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	pending, err := h.depositService.PendingDeposits(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch review queue")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionListResponse(pending))
}

// Resolve godoc
//
//	@Summary		Confirm or reject a pending deposit
//	@Description	Settles a pending deposit exactly once. Confirm credits the target bucket; reject leaves balances untouched. A deposit that is already settled yields 409.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Transaction ID"
//	@Param			request	body		dto.ResolveRequestDTO	true	"Resolve decision"
//	@Success		200		{object}	dto.TransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Admin access required"
//	@Failure		404		{object}	utils.Response	"Transaction not found"
//	@Failure		409		{object}	utils.Response	"Already resolved"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/admin/{id} [put]
func (h *TransactionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req dto.ResolveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.depositService.Resolve(r.Context(), auth.IsAdmin(r.Context()), txID, req.Decision)
	if err != nil {
		respondResolveError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionResponse(tx))
}

func respondResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTransactionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, domain.ErrAlreadyResolved):
		utils.RespondWithError(w, http.StatusConflict, "Transaction already resolved")
	case errors.Is(err, domain.ErrInvalidAccount):
		utils.RespondWithError(w, http.StatusNotFound, "Unknown account")
	case errors.Is(err, domain.ErrInconsistency):
		utils.RespondWithError(w, http.StatusInternalServerError, "Settlement outcome unknown, operators notified")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetUserHistory godoc
//
//	@Summary		Get a user's transaction history
//	@Description	Administrative view of another user's transaction log.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid user id"
//	@Failure		403	{object}	utils.Response	"Admin access required"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/user/{id} [get]
func (h *TransactionHandler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	history, err := h.depositService.History(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionListResponse(history))
}

// Backfill godoc
//
//	@Summary		Backfill a historical transaction
//	@Description	Insert a record-only entry into a user's log. Whatever its status, a backfilled entry never changes balances.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		dto.BackfillRequestDTO	true	"Historical entry"
//	@Success		201		{object}	dto.TransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Admin access required"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/user/{id} [post]
func (h *TransactionHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req dto.BackfillRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.depositService.Backfill(r.Context(), auth.IsAdmin(r.Context()), &domain.Transaction{
		UserID:  userID,
		Type:    req.Type,
		Amount:  domain.CentsFromDecimal(req.Amount),
		Method:  req.Method,
		Account: req.Account,
		Status:  req.Status,
		Date:    req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
		case errors.Is(err, domain.ErrValidation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewTransactionResponse(tx))
}

// Delete godoc
//
//	@Summary		Delete a transaction
//	@Description	Tombstone a log entry. The entry disappears from every listing but the row survives for audit.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Transaction ID"
//	@Success		200	{object}	utils.Response
//	@Failure		400	{object}	utils.Response	"Invalid transaction id"
//	@Failure		403	{object}	utils.Response	"Admin access required"
//	@Failure		404	{object}	utils.Response	"Transaction not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	err = h.depositService.Delete(r.Context(), auth.IsAdmin(r.Context()), txID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
		case errors.Is(err, domain.ErrTransactionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Transaction not found")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Transaction deleted"})
}
