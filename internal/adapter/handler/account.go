package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Tiyas17/backend-ledger/internal/adapter/storage"
	"github.com/Tiyas17/backend-ledger/internal/core/domain"
	"github.com/Tiyas17/backend-ledger/internal/core/security"
)

// BalanceService derives an account balance from the ledger.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (domain.Money, error)
}

type AccountHandler struct {
	Repo   *storage.AccountRepository
	Ledger BalanceService
}

// CreateAccountRequest defines what the user sends us
type CreateAccountRequest struct {
	OwnerName string `json:"owner_name" validate:"required"`
	Currency  string `json:"currency" validate:"required,oneof=USD TZS"`
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("Invalid account body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Owner name and a valid currency (USD or TZS) are required"})
	}

	account, err := h.Repo.CreateAccount(c.Context(), req.OwnerName, domain.Currency(req.Currency))
	if err != nil {
		slog.Error("Failed to create account", "error", err, "owner", req.OwnerName)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create account"})
	}

	slog.Info("✅ Account created", "id", account.ID, "owner", req.OwnerName)

	return c.Status(http.StatusCreated).JSON(account)
}

func (h *AccountHandler) GenerateKey(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID format"})
	}

	// Make sure the account exists before minting a key for it.
	if _, err := h.Repo.GetAccountByID(c.Context(), accountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not look up account"})
	}

	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		slog.Error("Crypto error generating key", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Crypto error"})
	}

	if err := h.Repo.SaveAPIKey(c.Context(), accountID, keyHash, "sk_live_"); err != nil {
		slog.Error("Failed to save API key", "error", err, "account_id", accountID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save key"})
	}

	slog.Info("🔑 API key generated", "account_id", accountID)

	// Show the key to the user ONCE ONLY
	return c.JSON(fiber.Map{
		"api_key": realKey,
		"warning": "Save this now! We won't show it again.",
	})
}

// GetBalance handles GET /v1/accounts/:id/balance. The balance is derived
// from the ledger entries on every call, never read from a stored field.
func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID"})
	}

	balance, err := h.Ledger.GetBalance(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		slog.Error("Failed to derive balance", "error", err, "account_id", accountID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch balance"})
	}

	return c.JSON(fiber.Map{
		"account_id": accountID,
		"balance":    balance.Amount,
		"currency":   balance.Currency,
	})
}

func (h *AccountHandler) GetHistory(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID"})
	}

	history, err := h.Repo.History(c.Context(), accountID)
	if err != nil {
		slog.Error("Failed to fetch history", "error", err, "account_id", accountID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch history"})
	}

	return c.JSON(fiber.Map{
		"transactions": history,
	})
}
