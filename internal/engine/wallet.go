package engine

import (
	"context"
	"strings"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// Request limits
const (
	MinDepositAmount    = 10
	MinWithdrawalAmount = 100
)

// RequestDeposit files a pending deposit for review. No money moves until
// it is approved.
func (e *Engine) RequestDeposit(ctx context.Context, userID uint, amount, externalRef int64, upiID string) (*domain.Transfer, error) {
	upiID = strings.TrimSpace(upiID)
	switch {
	case amount < MinDepositAmount:
		return nil, validation("minimum deposit amount is %d", MinDepositAmount)
	case externalRef <= 0:
		return nil, validation("transaction id must be a positive number")
	case upiID == "":
		return nil, validation("upi id is required")
	}
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	t := &domain.Transfer{
		UserID:      userID,
		Direction:   domain.DirectionDeposit,
		Amount:      amount,
		UpiID:       upiID,
		ExternalRef: externalRef,
		Status:      domain.TransferPending,
	}
	if err := e.store.CreateTransfer(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RequestWithdrawal files a pending withdrawal. The balance is checked now
// and again when the request is approved.
func (e *Engine) RequestWithdrawal(ctx context.Context, userID uint, amount int64, upiID string) (*domain.Transfer, error) {
	upiID = strings.TrimSpace(upiID)
	switch {
	case amount < MinWithdrawalAmount:
		return nil, validation("minimum withdrawal amount is %d", MinWithdrawalAmount)
	case upiID == "":
		return nil, validation("upi id is required")
	}
	var out *domain.Transfer
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if u.Balance < amount {
			return domain.ErrInsufficientBalance
		}
		t := &domain.Transfer{
			UserID:    userID,
			Direction: domain.DirectionWithdrawal,
			Amount:    amount,
			UpiID:     upiID,
			Status:    domain.TransferPending,
		}
		if err := tx.CreateTransfer(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Balance returns the current balance of an account
func (e *Engine) Balance(ctx context.Context, userID uint) (int64, error) {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

// History pages through an account's ledger, newest first, optionally
// restricted to one entry kind.
func (e *Engine) History(ctx context.Context, userID uint, kind domain.EntryKind, page store.Page) ([]domain.LedgerEntry, int64, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, validation("unknown transaction type %q", kind)
	}
	return e.store.ListEntries(ctx, store.EntryFilter{UserID: userID, Kind: kind, Page: page})
}

// Account returns an account by id
func (e *Engine) Account(ctx context.Context, userID uint) (*domain.User, error) {
	return e.store.GetUser(ctx, userID)
}
