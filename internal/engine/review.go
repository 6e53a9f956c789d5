package engine

import (
	"context"
	"fmt"
	"strings"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// ResolveDeposit approves or rejects a pending deposit. Approval credits
// the amount; rejection requires a reason and records a RejectedTransfer.
func (e *Engine) ResolveDeposit(ctx context.Context, depositID uint, status domain.TransferStatus, reason string) (*domain.Transfer, error) {
	return e.resolve(ctx, domain.DirectionDeposit, depositID, status, reason)
}

// ResolveWithdrawal approves or rejects a pending withdrawal. Approval
// fails with domain.ErrInsufficientBalance if the account cannot cover it.
func (e *Engine) ResolveWithdrawal(ctx context.Context, withdrawalID uint, status domain.TransferStatus, reason string) (*domain.Transfer, error) {
	return e.resolve(ctx, domain.DirectionWithdrawal, withdrawalID, status, reason)
}

func (e *Engine) resolve(ctx context.Context, dir domain.Direction, id uint, status domain.TransferStatus, reason string) (*domain.Transfer, error) {
	if !status.Terminal() {
		return nil, validation("status must be approved or rejected")
	}
	reason = strings.TrimSpace(reason)
	if status == domain.TransferRejected && reason == "" {
		return nil, validation("reason is required when rejecting a %s", dir)
	}

	var transfer *domain.Transfer
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		tr, err := tx.LockTransfer(ctx, id, dir)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err != nil || tr.Status != domain.TransferPending {
			return domain.Errorf(domain.ErrNotFound, "no pending %s with that id", dir)
		}

		if status == domain.TransferApproved {
			if err := applyApproval(ctx, tx, tr); err != nil {
				return err
			}
		} else if err := applyRejection(ctx, tx, tr, reason); err != nil {
			return err
		}

		if err := tx.SetTransferStatus(ctx, tr.ID, status); err != nil {
			return err
		}
		tr.Status = status
		transfer = tr
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, domain.Event{
		Type:        transferEvent(dir, status),
		AccountID:   transfer.UserID,
		ReferenceID: transfer.ID,
		Amount:      transfer.Amount,
		Message:     reason,
	})
	return transfer, nil
}

func applyApproval(ctx context.Context, tx store.Tx, tr *domain.Transfer) error {
	entryKind, effect, delta, label := domain.EntryDeposit, domain.EffectIncrease, tr.Amount, "Deposit"
	adjust := fmt.Sprintf("Balance updated: +%d from deposit", tr.Amount)
	if tr.Direction == domain.DirectionWithdrawal {
		entryKind, effect, delta, label = domain.EntryWithdrawal, domain.EffectDecrease, -tr.Amount, "Withdrawal"
		adjust = fmt.Sprintf("Balance updated: -%d from withdrawal", tr.Amount)
	}

	// Withdrawals re-check the balance here; AdjustBalance refuses to go negative.
	if _, err := tx.AdjustBalance(ctx, tr.UserID, delta); err != nil {
		return err
	}
	if err := tx.AppendEntry(ctx, &domain.LedgerEntry{
		UserID:        tr.UserID,
		Kind:          entryKind,
		Amount:        tr.Amount,
		BalanceEffect: effect,
		Status:        string(domain.TransferApproved),
		Message:       fmt.Sprintf("%s approved by admin - ID: %d", label, tr.ID),
		ReferenceID:   tr.ID,
	}); err != nil {
		return err
	}
	return tx.AppendEntry(ctx, &domain.LedgerEntry{
		UserID:        tr.UserID,
		Kind:          domain.EntryBalanceAdjustment,
		Amount:        tr.Amount,
		BalanceEffect: effect,
		Status:        domain.EntryStatusCompleted,
		Message:       adjust,
		ReferenceID:   tr.ID,
	})
}

func applyRejection(ctx context.Context, tx store.Tx, tr *domain.Transfer, reason string) error {
	entryKind, label := domain.EntryDepositRejected, "Deposit"
	if tr.Direction == domain.DirectionWithdrawal {
		entryKind, label = domain.EntryWithdrawalRejected, "Withdrawal"
	}
	if err := tx.AppendEntry(ctx, &domain.LedgerEntry{
		UserID:        tr.UserID,
		Kind:          entryKind,
		Amount:        tr.Amount,
		BalanceEffect: domain.EffectNone,
		Status:        string(domain.TransferRejected),
		Message:       fmt.Sprintf("%s rejected by admin - Reason: %s", label, reason),
		ReferenceID:   tr.ID,
	}); err != nil {
		return err
	}
	return tx.CreateRejection(ctx, &domain.RejectedTransfer{
		TransferID: tr.ID,
		UserID:     tr.UserID,
		Direction:  tr.Direction,
		Amount:     tr.Amount,
		UpiID:      tr.UpiID,
		Reason:     reason,
	})
}

func transferEvent(dir domain.Direction, status domain.TransferStatus) domain.EventType {
	switch {
	case dir == domain.DirectionDeposit && status == domain.TransferApproved:
		return domain.EventDepositApproved
	case dir == domain.DirectionDeposit:
		return domain.EventDepositRejected
	case status == domain.TransferApproved:
		return domain.EventWithdrawalApproved
	default:
		return domain.EventWithdrawalRejected
	}
}

// PendingTransfers lists requests of one direction awaiting review, newest first
func (e *Engine) PendingTransfers(ctx context.Context, dir domain.Direction) ([]domain.Transfer, error) {
	return e.store.ListTransfers(ctx, store.TransferFilter{Direction: dir, Status: domain.TransferPending})
}

// RejectedTransfers lists rejection records of one direction, newest first
func (e *Engine) RejectedTransfers(ctx context.Context, dir domain.Direction) ([]domain.RejectedTransfer, error) {
	return e.store.ListRejections(ctx, dir)
}

// LedgerHistory pages through ledger entries of every account, or of one
// account when userID is non-zero.
func (e *Engine) LedgerHistory(ctx context.Context, userID uint, page store.Page) ([]domain.LedgerEntry, int64, error) {
	if userID != 0 {
		if _, err := e.store.GetUser(ctx, userID); err != nil {
			return nil, 0, err
		}
	}
	return e.store.ListEntries(ctx, store.EntryFilter{UserID: userID, Page: page})
}

// Accounts pages through all accounts with their balances
func (e *Engine) Accounts(ctx context.Context, page store.Page) ([]domain.User, int64, error) {
	return e.store.ListUsers(ctx, page)
}
