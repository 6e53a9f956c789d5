package engine

import (
	"context"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// TournamentView is a tournament as shown to a user. Winners is only set
// once the tournament has ended.
type TournamentView struct {
	domain.Tournament
	Winners []domain.Reward `json:"winners,omitempty"`
}

func hideRooms(ts []domain.Tournament) []domain.Tournament {
	for i := range ts {
		ts[i] = ts[i].WithoutRoom()
	}
	return ts
}

// OpenTournaments lists future tournaments for a game that userID has not joined
func (e *Engine) OpenTournaments(ctx context.Context, userID uint, game string) ([]domain.Tournament, error) {
	game = domain.GameName(game)
	if err := knownGame(ctx, e.store, game); err != nil {
		return nil, err
	}
	ended := false
	ts, err := e.store.ListTournaments(ctx, store.TournamentFilter{
		Game:           game,
		Ended:          &ended,
		ScheduledAfter: e.now(),
		NotJoinedBy:    userID,
	})
	if err != nil {
		return nil, err
	}
	return hideRooms(ts), nil
}

// Tournament returns one tournament. Room credentials are revealed only to
// participants and reward holders.
func (e *Engine) Tournament(ctx context.Context, userID, tournamentID uint) (*TournamentView, error) {
	t, err := e.store.GetTournament(ctx, tournamentID)
	if err != nil {
		if isNotFound(err) {
			return nil, errTournamentNotFound
		}
		return nil, err
	}
	rewards, err := e.store.ListRewards(ctx, store.RewardFilter{TournamentID: t.ID})
	if err != nil {
		return nil, err
	}

	insider := false
	for _, r := range rewards {
		if r.UserID == userID {
			insider = true
			break
		}
	}
	if !insider {
		if _, err := e.store.FindParticipant(ctx, t.ID, userID); err == nil {
			insider = true
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	view := &TournamentView{Tournament: *t}
	if !insider {
		view.Tournament = t.WithoutRoom()
	}
	if t.IsEnded {
		view.Winners = rewards
	}
	return view, nil
}

// ParticipatedTournaments lists tournaments userID joined that have not ended
func (e *Engine) ParticipatedTournaments(ctx context.Context, userID uint) ([]domain.Tournament, error) {
	ended := false
	return e.store.ListTournaments(ctx, store.TournamentFilter{JoinedBy: userID, Ended: &ended})
}

// Winnings lists userID's rewards in ended tournaments
func (e *Engine) Winnings(ctx context.Context, userID uint) ([]domain.Reward, error) {
	return e.store.ListRewards(ctx, store.RewardFilter{UserID: userID, EndedOnly: true})
}

// IsParticipant reports whether userID joined tournamentID
func (e *Engine) IsParticipant(ctx context.Context, userID, tournamentID uint) (bool, error) {
	_, err := e.store.FindParticipant(ctx, tournamentID, userID)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
