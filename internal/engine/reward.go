package engine

import (
	"context"
	"fmt"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// MaxKills bounds the kill count accepted by AwardKill
const MaxKills = 100

// AwardKill credits a participant perKillPrize*kills for a live tournament
// owned by adminID. A user receives at most one kill reward per tournament.
func (e *Engine) AwardKill(ctx context.Context, adminID, tournamentID, userID uint, kills int) (*domain.Reward, error) {
	if kills < 0 || kills > MaxKills {
		return nil, validation("kills must be between 0 and %d", MaxKills)
	}

	var (
		reward *domain.Reward
		name   string
	)
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := ownedTournament(ctx, tx, adminID, tournamentID)
		if err != nil {
			return err
		}
		if t.IsEnded {
			return domain.ErrAlreadyEnded
		}
		if _, err := tx.FindParticipant(ctx, t.ID, userID); err != nil {
			if isNotFound(err) {
				return domain.ErrNotAParticipant
			}
			return err
		}
		if _, err := tx.FindReward(ctx, t.ID, userID, domain.RewardKill); err == nil {
			return domain.ErrDuplicateReward
		} else if !isNotFound(err) {
			return err
		}

		amount := t.PerKillPrize * int64(kills)
		r := &domain.Reward{UserID: userID, TournamentID: t.ID, Amount: amount, Kind: domain.RewardKill}
		if err := tx.CreateReward(ctx, r); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, &domain.LedgerEntry{
			UserID:        userID,
			Kind:          domain.EntryKillReward,
			Amount:        amount,
			BalanceEffect: domain.EffectIncrease,
			Status:        domain.EntryStatusCompleted,
			Message:       fmt.Sprintf("Kill reward: %d kills in %s - Reward: %d", kills, t.Name, amount),
			ReferenceID:   t.ID,
		}); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, userID, amount); err != nil {
			return err
		}
		reward, name = r, t.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, domain.Event{
		Type:        domain.EventKillReward,
		AccountID:   userID,
		ReferenceID: tournamentID,
		Amount:      reward.Amount,
		Message:     fmt.Sprintf("%d kills in %s", kills, name),
	})
	return reward, nil
}

// Settlement is the outcome of EndTournament. Reward is the winner's
// reclassified kill reward, or nil when the winner held none.
type Settlement struct {
	Tournament *domain.Tournament
	Reward     *domain.Reward
}

// EndTournament closes a tournament and declares winnerID the winner. An
// existing kill reward of the winner is reclassified to winnings together
// with its ledger entry; no new money moves. Ending cannot be undone.
func (e *Engine) EndTournament(ctx context.Context, adminID, tournamentID, winnerID uint) (*Settlement, error) {
	var out Settlement
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := ownedTournament(ctx, tx, adminID, tournamentID)
		if err != nil {
			return err
		}
		if t.IsEnded {
			return domain.Errorf(domain.ErrNotFound, "tournament not found or already ended")
		}
		if _, err := tx.FindParticipant(ctx, t.ID, winnerID); err != nil {
			if isNotFound(err) {
				return domain.ErrNotAParticipant
			}
			return err
		}

		r, err := tx.FindReward(ctx, t.ID, winnerID, domain.RewardKill)
		switch {
		case err == nil:
			if err := tx.SetRewardKind(ctx, r.ID, domain.RewardWinnings); err != nil {
				return err
			}
			if _, err := tx.ReclassifyEntries(ctx, winnerID, t.ID, domain.EntryKillReward, domain.EntryTournamentWinnings); err != nil {
				return err
			}
			r.Kind = domain.RewardWinnings
			out.Reward = r
		case !isNotFound(err):
			return err
		}

		t.IsEnded = true
		if err := tx.SaveTournament(ctx, t); err != nil {
			return err
		}
		out.Tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := domain.Event{
		Type:        domain.EventTournamentWon,
		AccountID:   winnerID,
		ReferenceID: tournamentID,
		Message:     fmt.Sprintf("Won %s", out.Tournament.Name),
	}
	if out.Reward != nil {
		ev.Amount = out.Reward.Amount
	}
	e.emit(ctx, ev)
	return &out, nil
}
