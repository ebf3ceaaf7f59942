package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
	"github.com/Tiyas17/backend-ledger/internal/core/ledger"
)

var validate = validator.New()

// TransferService is the slice of the ledger service the transfer endpoints
// need.
type TransferService interface {
	SubmitTransfer(ctx context.Context, in ledger.TransferInput) (*ledger.Result, error)
	SubmitSystemFunding(ctx context.Context, in ledger.FundingInput) (*ledger.Result, error)
}

type TransferHandler struct {
	Svc TransferService
}

type TransferRequest struct {
	FromAccount    string `json:"from_account" validate:"required,uuid"`
	ToAccount      string `json:"to_account" validate:"required,uuid"`
	Amount         int64  `json:"amount" validate:"required,gt=0"` // Cents!
	IdempotencyKey string `json:"idempotency_key" validate:"required"`
}

type FundingRequest struct {
	ToAccount      string `json:"to_account" validate:"required,uuid"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key" validate:"required"`
}

// SubmitTransfer handles POST /v1/transfers
func (h *TransferHandler) SubmitTransfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "From account, to account, amount and idempotency key are required",
		})
	}

	// The API key identifies the caller's account; only that account may be
	// debited. Auth middleware sets the local, so a mismatch here is a key
	// presented for somebody else's money.
	if caller, ok := c.Locals("account_id").(string); ok && caller != req.FromAccount {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"error": "API key does not belong to the sending account",
		})
	}

	// Field format is already validated, so these cannot fail.
	fromID, _ := uuid.Parse(req.FromAccount)
	toID, _ := uuid.Parse(req.ToAccount)

	result, err := h.Svc.SubmitTransfer(c.Context(), ledger.TransferInput{
		FromAccount:    fromID,
		ToAccount:      toID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return transferError(c, err)
	}
	return transferResult(c, result)
}

// SubmitSystemFunding handles POST /v1/transfers/system/initial-funds
func (h *TransferHandler) SubmitSystemFunding(c *fiber.Ctx) error {
	var req FundingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "To account, amount and idempotency key are required",
		})
	}

	toID, _ := uuid.Parse(req.ToAccount)

	result, err := h.Svc.SubmitSystemFunding(c.Context(), ledger.FundingInput{
		ToAccount:      toID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return transferError(c, err)
	}
	return transferResult(c, result)
}

// transferResult maps an outcome to its HTTP shape. CREATED is the only 201;
// duplicate-routed outcomes reuse the stored result or report where the
// original submission ended up.
func transferResult(c *fiber.Ctx, result *ledger.Result) error {
	switch result.Outcome {
	case ledger.OutcomeCreated:
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"message":     "Transaction completed successfully",
			"transaction": result.Transaction,
		})
	case ledger.OutcomeAlreadyCompleted:
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message":     "The transaction has been already processed",
			"transaction": result.Transaction,
		})
	case ledger.OutcomeStillProcessing:
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "Transaction is still processing",
		})
	case ledger.OutcomePreviouslyFailed:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "The transaction processing failed, please try again with a new idempotency key",
		})
	case ledger.OutcomePreviouslyReversed:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Transaction has been reversed, please try again with a new idempotency key",
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Unknown outcome"})
	}
}

func transferError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   insufficient.Error(),
			"balance": insufficient.Balance,
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrAccountNotActive):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction failed"})
	}
}
