package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Tiyas17/backend-ledger/internal/core/domain"
)

// Outcome tells the caller what happened to their submission. Duplicate
// submissions are routed by the status of the transaction that already owns
// the idempotency key, they never execute a second time.
type Outcome string

const (
	OutcomeCreated            Outcome = "CREATED"
	OutcomeAlreadyCompleted   Outcome = "ALREADY_COMPLETED"
	OutcomeStillProcessing    Outcome = "STILL_PROCESSING"
	OutcomePreviouslyFailed   Outcome = "PREVIOUSLY_FAILED"
	OutcomePreviouslyReversed Outcome = "PREVIOUSLY_REVERSED"
)

// Result is the success-shaped answer of a submission. Transaction is set for
// CREATED and ALREADY_COMPLETED, where the stored row is the authoritative
// record of what was executed.
type Result struct {
	Outcome     Outcome
	Transaction *domain.Transaction
}

type TransferInput struct {
	FromAccount    uuid.UUID
	ToAccount      uuid.UUID
	Amount         int64
	IdempotencyKey string
}

type FundingInput struct {
	ToAccount      uuid.UUID
	Amount         int64
	IdempotencyKey string
}

// Service drives the transfer flow: validate, resolve the idempotency key,
// create the PENDING transaction, then commit the DEBIT/CREDIT pair and the
// COMPLETED status flip as one atomic unit.
type Service struct {
	store    Store
	notifier Notifier

	// systemAccountID is the designated system-of-record account that funds
	// opening balances. It is the only sender allowed to go negative.
	systemAccountID uuid.UUID
}

func NewService(store Store, notifier Notifier, systemAccountID uuid.UUID) *Service {
	return &Service{
		store:           store,
		notifier:        notifier,
		systemAccountID: systemAccountID,
	}
}

// SubmitTransfer processes one transfer request end to end.
//
// THE TRANSFER FLOW:
//  1. Validate request
//  2. Resolve both accounts
//  3. Resolve idempotency key
//  4. Check account status
//  5. Derive sender balance from ledger (fast path; re-checked inside the commit)
//  6. Create transaction (PENDING)
//  7. Commit DEBIT + CREDIT entries and mark COMPLETED atomically
//  8. Queue notification
func (s *Service) SubmitTransfer(ctx context.Context, in TransferInput) (*Result, error) {
	// 1. Validate request
	if in.FromAccount == uuid.Nil || in.ToAccount == uuid.Nil || in.Amount <= 0 || in.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: from account, to account, amount and idempotency key are required", domain.ErrInvalidRequest)
	}
	if in.FromAccount == in.ToAccount {
		return nil, fmt.Errorf("%w: from and to account must differ", domain.ErrInvalidRequest)
	}

	// 2. Resolve both accounts
	from, err := s.store.FindAccount(ctx, in.FromAccount)
	if err != nil {
		return nil, accountLookupErr(err)
	}
	to, err := s.store.FindAccount(ctx, in.ToAccount)
	if err != nil {
		return nil, accountLookupErr(err)
	}
	// Balances are sums of minor units, so mixing currencies would silently
	// conflate them. Conversion is not supported.
	if from.Currency != to.Currency {
		return nil, fmt.Errorf("%w: accounts must share a currency, cannot transfer %s to %s",
			domain.ErrInvalidRequest, from.Currency, to.Currency)
	}

	// 3. Resolve idempotency key. This is only the fast path: the uniqueness
	// constraint on the insert below is the true enforcement point.
	if res, err := s.resolveDuplicate(ctx, in.IdempotencyKey); err != nil || res != nil {
		return res, err
	}

	// 4. Check account status
	if from.Status != domain.AccountActive || to.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: both accounts must be active to process the transfer", domain.ErrAccountNotActive)
	}

	// 5. Derive sender balance from ledger
	balance, err := s.store.AccountBalance(ctx, from.ID)
	if err != nil {
		return nil, fmt.Errorf("derive balance: %w", err)
	}
	if _, err := domain.NewMoney(balance, from.Currency).Subtract(domain.NewMoney(in.Amount, from.Currency)); err != nil {
		return nil, &domain.InsufficientFundsError{Balance: balance, Requested: in.Amount}
	}

	// 6. Create transaction (PENDING)
	txn, res, err := s.createPending(ctx, from.ID, to.ID, from.Currency, in.Amount, in.IdempotencyKey)
	if err != nil || res != nil {
		return res, err
	}

	// 7. Commit the pair atomically, with the sufficiency check re-run inside
	// the same unit so two concurrent debits cannot both drain the account.
	if err := s.commitPair(ctx, txn, true); err != nil {
		return nil, err
	}

	// 8. Queue notification. Best-effort: a completed transfer is never
	// reported as failed because of a notification problem.
	s.notify(ctx, txn)

	return &Result{Outcome: OutcomeCreated, Transaction: txn}, nil
}

// SubmitSystemFunding seeds an account with an opening balance from the
// system account. The sender's status and sufficiency are not checked;
// everything else follows the same commit path as a regular transfer.
func (s *Service) SubmitSystemFunding(ctx context.Context, in FundingInput) (*Result, error) {
	if in.ToAccount == uuid.Nil || in.Amount <= 0 || in.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: to account, amount and idempotency key are required", domain.ErrInvalidRequest)
	}
	if s.systemAccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: system account not configured", domain.ErrInvalidRequest)
	}
	if in.ToAccount == s.systemAccountID {
		return nil, fmt.Errorf("%w: cannot fund the system account", domain.ErrInvalidRequest)
	}

	to, err := s.store.FindAccount(ctx, in.ToAccount)
	if err != nil {
		return nil, accountLookupErr(err)
	}
	system, err := s.store.FindAccount(ctx, s.systemAccountID)
	if err != nil {
		return nil, accountLookupErr(err)
	}

	if res, err := s.resolveDuplicate(ctx, in.IdempotencyKey); err != nil || res != nil {
		return res, err
	}

	if to.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: recipient account must be active", domain.ErrAccountNotActive)
	}

	txn, res, err := s.createPending(ctx, system.ID, to.ID, to.Currency, in.Amount, in.IdempotencyKey)
	if err != nil || res != nil {
		return res, err
	}

	// The system account may go negative, so the in-unit balance check is off.
	if err := s.commitPair(ctx, txn, false); err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeCreated, Transaction: txn}, nil
}

// GetBalance derives the account's current balance from its committed
// entries. Pure read, no side effects.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (domain.Money, error) {
	account, err := s.store.FindAccount(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}
	balance, err := s.store.AccountBalance(ctx, accountID)
	if err != nil {
		return domain.Money{}, fmt.Errorf("derive balance: %w", err)
	}
	return domain.NewMoney(balance, account.Currency), nil
}

// resolveDuplicate routes a resubmitted idempotency key by the status of the
// transaction that already owns it. Returns (nil, nil) when the key is free.
func (s *Service) resolveDuplicate(ctx context.Context, idempotencyKey string) (*Result, error) {
	existing, err := s.store.FindTransactionByKey(ctx, idempotencyKey)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve idempotency key: %w", err)
	}

	switch existing.Status {
	case domain.TransactionCompleted:
		// The stored transaction is the authoritative result. No re-execution.
		return &Result{Outcome: OutcomeAlreadyCompleted, Transaction: existing}, nil
	case domain.TransactionPending:
		return &Result{Outcome: OutcomeStillProcessing}, nil
	case domain.TransactionFailed:
		return &Result{Outcome: OutcomePreviouslyFailed}, nil
	case domain.TransactionReversed:
		return &Result{Outcome: OutcomePreviouslyReversed}, nil
	default:
		return nil, fmt.Errorf("transaction %s has unknown status %q", existing.ID, existing.Status)
	}
}

// createPending inserts the PENDING transaction row. A unique-key conflict
// here means a concurrent request with the same key won the insert race; that
// is a duplicate, not an error, so we re-fetch and route by its status.
func (s *Service) createPending(ctx context.Context, fromID, toID uuid.UUID, currency domain.Currency, amount int64, idempotencyKey string) (*domain.Transaction, *Result, error) {
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		FromAccountID:  fromID,
		ToAccountID:    toID,
		Amount:         amount,
		Currency:       currency,
		IdempotencyKey: idempotencyKey,
		Status:         domain.TransactionPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.CreateTransaction(ctx, txn)
	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		res, rerr := s.resolveDuplicate(ctx, idempotencyKey)
		if rerr != nil {
			return nil, nil, rerr
		}
		if res == nil {
			// The winning row must exist; not finding it means the store is lying.
			return nil, nil, fmt.Errorf("idempotency key %q rejected as duplicate but no transaction found", idempotencyKey)
		}
		return nil, res, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil, nil
}

// commitPair posts the DEBIT/CREDIT pair and flips the transaction to
// COMPLETED as one atomic unit. When enforceBalance is set, the sender's
// balance is re-derived inside the unit and the whole unit aborts if it no
// longer covers the amount.
//
// On abort nothing persists; the transaction is then moved PENDING -> FAILED
// by an independently committed compensating write. If that write fails too,
// the transaction stays PENDING with zero entries for the reconciler to pick
// up.
func (s *Service) commitPair(ctx context.Context, txn *domain.Transaction, enforceBalance bool) error {
	now := time.Now().UTC()
	commitErr := s.store.Atomic(ctx, func(st Store) error {
		if enforceBalance {
			balance, err := st.AccountBalance(ctx, txn.FromAccountID)
			if err != nil {
				return err
			}
			if _, err := domain.NewMoney(balance, txn.Currency).Subtract(domain.NewMoney(txn.Amount, txn.Currency)); err != nil {
				return &domain.InsufficientFundsError{Balance: balance, Requested: txn.Amount}
			}
		}

		debit := &domain.LedgerEntry{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			AccountID:     txn.FromAccountID,
			Amount:        txn.Amount,
			Direction:     domain.Debit,
			CreatedAt:     now,
		}
		if err := st.CreateEntry(ctx, debit); err != nil {
			return err
		}

		credit := &domain.LedgerEntry{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			AccountID:     txn.ToAccountID,
			Amount:        txn.Amount,
			Direction:     domain.Credit,
			CreatedAt:     now,
		}
		if err := st.CreateEntry(ctx, credit); err != nil {
			return err
		}

		return st.UpdateTransactionStatus(ctx, txn.ID, domain.TransactionPending, domain.TransactionCompleted)
	})

	if commitErr == nil {
		txn.Status = domain.TransactionCompleted
		txn.UpdatedAt = now
		return nil
	}

	// Compensating write, outside the aborted unit. Attempted exactly once.
	if ferr := s.store.UpdateTransactionStatus(ctx, txn.ID, domain.TransactionPending, domain.TransactionFailed); ferr != nil {
		// Distinguishable in logs from a plain commit failure: reconciliation
		// tooling depends on finding these.
		slog.Error("transaction stuck in PENDING: compensating write failed after commit abort",
			"transaction_id", txn.ID, "commit_error", commitErr, "status_error", ferr)
	} else {
		txn.Status = domain.TransactionFailed
		slog.Warn("transfer commit aborted, transaction marked FAILED",
			"transaction_id", txn.ID, "error", commitErr)
	}

	var insufficient *domain.InsufficientFundsError
	if errors.As(commitErr, &insufficient) {
		// The in-unit re-check lost to a concurrent debit. Still a precondition
		// failure from the caller's point of view, so report the balance.
		return insufficient
	}
	return fmt.Errorf("%w: %v", domain.ErrCommitAborted, commitErr)
}

func (s *Service) notify(ctx context.Context, txn *domain.Transaction) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TransferCompleted(ctx, txn); err != nil {
		slog.Error("failed to queue transfer notification", "error", err, "transaction_id", txn.ID)
	}
}

func accountLookupErr(err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("%w: invalid account", domain.ErrInvalidRequest)
	}
	return fmt.Errorf("resolve account: %w", err)
}
