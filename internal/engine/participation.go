package engine

import (
	"context"
	"fmt"
	"strings"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// JoinRequest carries the in-game identity a user registers with
type JoinRequest struct {
	TournamentID   uint
	UserID         uint
	PlayerUsername string
	PlayerUserID   string
	PlayerLevel    int
}

// Join registers a user for a tournament and debits the entry fee.
//
// Checks run in this order against the locked tournament and account rows:
// open tournament, not already joined, capacity, account, balance, level.
func (e *Engine) Join(ctx context.Context, req JoinRequest) (*domain.Participant, error) {
	req.PlayerUsername = strings.TrimSpace(req.PlayerUsername)
	req.PlayerUserID = strings.TrimSpace(req.PlayerUserID)
	if req.PlayerUsername == "" || req.PlayerUserID == "" {
		return nil, validation("player username and player user id are required")
	}

	var (
		participant *domain.Participant
		tournament  *domain.Tournament
	)
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := lockTournament(ctx, tx, req.TournamentID)
		if err != nil {
			return err
		}
		if !t.Open(e.now()) {
			return domain.Errorf(domain.ErrNotFound, "tournament not found or no longer open")
		}

		if _, err := tx.FindParticipant(ctx, t.ID, req.UserID); err == nil {
			return domain.ErrAlreadyParticipated
		} else if !isNotFound(err) {
			return err
		}

		if t.Full() {
			return domain.ErrCapacityExceeded
		}

		user, err := tx.LockUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		if user.Balance < t.EntryFee {
			return domain.Errorf(domain.ErrInsufficientBalance, "insufficient balance: entry fee is %d", t.EntryFee)
		}
		if req.PlayerLevel < domain.MinPlayerLevel {
			return domain.ErrIneligibleLevel
		}

		if _, err := tx.AdjustBalance(ctx, user.ID, -t.EntryFee); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, &domain.LedgerEntry{
			UserID:        user.ID,
			Kind:          domain.EntryTournamentEntry,
			Amount:        t.EntryFee,
			BalanceEffect: domain.EffectDecrease,
			Status:        domain.EntryStatusCompleted,
			Message:       fmt.Sprintf("Entry fee paid for tournament: %s", t.Name),
			ReferenceID:   t.ID,
		}); err != nil {
			return err
		}
		p := &domain.Participant{
			TournamentID:   t.ID,
			UserID:         user.ID,
			PlayerUsername: req.PlayerUsername,
			PlayerUserID:   req.PlayerUserID,
			PlayerLevel:    req.PlayerLevel,
			JoinedAt:       e.now(),
		}
		if err := tx.CreateParticipant(ctx, p); err != nil {
			return err
		}
		if err := tx.IncrementParticipants(ctx, t.ID); err != nil {
			return err
		}
		participant, tournament = p, t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, domain.Event{
		Type:        domain.EventTournamentJoined,
		AccountID:   participant.UserID,
		ReferenceID: tournament.ID,
		Amount:      tournament.EntryFee,
		Message:     fmt.Sprintf("Joined %s", tournament.Name),
	})
	return participant, nil
}
