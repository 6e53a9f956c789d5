package engine

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// Tournament field limits
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 255
)

// TournamentInput describes a new tournament
type TournamentInput struct {
	Game            string
	Name            string
	Description     string
	RoomID          string
	RoomPassword    string
	EntryFee        int64
	Prize           int64
	PerKillPrize    int64
	MaxParticipants int
	ScheduledAt     time.Time
}

// TournamentPatch holds the fields an edit changes; nil fields are kept
type TournamentPatch struct {
	Game            *string
	Name            *string
	Description     *string
	EntryFee        *int64
	Prize           *int64
	PerKillPrize    *int64
	MaxParticipants *int
	ScheduledAt     *time.Time
}

// TournamentScope selects tournaments for an admin listing
type TournamentScope string

// Listing scopes
const (
	ScopeAll     TournamentScope = "all"
	ScopeCurrent TournamentScope = "current"
	ScopeHistory TournamentScope = "history"
)

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (e *Engine) validateTournament(t *domain.Tournament) error {
	switch n := utf8.RuneCountInString(t.Name); {
	case n < 1 || n > MaxNameLength:
		return validation("name must be 1 to %d characters", MaxNameLength)
	case utf8.RuneCountInString(t.Description) > MaxDescriptionLength:
		return validation("description must be at most %d characters", MaxDescriptionLength)
	case !numeric(t.RoomID):
		return validation("room id must be numeric")
	case t.EntryFee < 0 || t.Prize < 0 || t.PerKillPrize < 0:
		return validation("fees and prizes must not be negative")
	case t.MaxParticipants <= 0:
		return validation("max participants must be greater than 0")
	}
	return nil
}

func (e *Engine) validateSchedule(at time.Time) error {
	if !at.After(e.now()) {
		return validation("scheduled time must be in the future")
	}
	return nil
}

// CreateTournament registers a tournament owned by adminID
func (e *Engine) CreateTournament(ctx context.Context, adminID uint, in TournamentInput) (*domain.Tournament, error) {
	t := &domain.Tournament{
		OwnerAdminID:    adminID,
		Game:            domain.GameName(in.Game),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		RoomID:          strings.TrimSpace(in.RoomID),
		RoomPassword:    in.RoomPassword,
		EntryFee:        in.EntryFee,
		Prize:           in.Prize,
		PerKillPrize:    in.PerKillPrize,
		MaxParticipants: in.MaxParticipants,
		ScheduledAt:     in.ScheduledAt,
	}
	if t.RoomID == "" {
		t.RoomID = "0"
	}
	if err := e.validateTournament(t); err != nil {
		return nil, err
	}
	if err := e.validateSchedule(t.ScheduledAt); err != nil {
		return nil, err
	}
	if err := knownGame(ctx, e.store, t.Game); err != nil {
		return nil, err
	}
	if err := e.store.CreateTournament(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateRoom sets the room credentials of a tournament that has not ended
func (e *Engine) UpdateRoom(ctx context.Context, adminID, tournamentID uint, roomID, roomPassword string) (*domain.Tournament, error) {
	roomID = strings.TrimSpace(roomID)
	if !numeric(roomID) {
		return nil, validation("room id must be numeric")
	}
	var out *domain.Tournament
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := ownedTournament(ctx, tx, adminID, tournamentID)
		if err != nil {
			return err
		}
		if t.IsEnded {
			return domain.ErrAlreadyEnded
		}
		t.RoomID, t.RoomPassword = roomID, roomPassword
		if err := tx.SaveTournament(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// EditTournament applies a patch to a tournament that has not ended. The
// capacity may not drop below the current roster size.
func (e *Engine) EditTournament(ctx context.Context, adminID, tournamentID uint, p TournamentPatch) (*domain.Tournament, error) {
	var out *domain.Tournament
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := ownedTournament(ctx, tx, adminID, tournamentID)
		if err != nil {
			return err
		}
		if t.IsEnded {
			return domain.ErrAlreadyEnded
		}
		if p.MaxParticipants != nil && *p.MaxParticipants < t.CurrentParticipants {
			return domain.ErrCapacityViolation
		}
		if p.Game != nil {
			t.Game = domain.GameName(*p.Game)
			if err := knownGame(ctx, tx, t.Game); err != nil {
				return err
			}
		}
		if p.Name != nil {
			t.Name = strings.TrimSpace(*p.Name)
		}
		if p.Description != nil {
			t.Description = strings.TrimSpace(*p.Description)
		}
		if p.EntryFee != nil {
			t.EntryFee = *p.EntryFee
		}
		if p.Prize != nil {
			t.Prize = *p.Prize
		}
		if p.PerKillPrize != nil {
			t.PerKillPrize = *p.PerKillPrize
		}
		if p.MaxParticipants != nil {
			t.MaxParticipants = *p.MaxParticipants
		}
		if p.ScheduledAt != nil {
			if err := e.validateSchedule(*p.ScheduledAt); err != nil {
				return err
			}
			t.ScheduledAt = *p.ScheduledAt
		}
		if err := e.validateTournament(t); err != nil {
			return err
		}
		if err := tx.SaveTournament(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// DeleteTournament removes a tournament nobody has joined
func (e *Engine) DeleteTournament(ctx context.Context, adminID, tournamentID uint) error {
	return e.store.RunAtomic(ctx, func(tx store.Tx) error {
		t, err := ownedTournament(ctx, tx, adminID, tournamentID)
		if err != nil {
			return err
		}
		n, err := tx.CountParticipants(ctx, t.ID)
		if err != nil {
			return err
		}
		if n > 0 || t.CurrentParticipants > 0 {
			return domain.ErrHasParticipants
		}
		return tx.DeleteTournament(ctx, t.ID)
	})
}

// AdminTournaments lists the tournaments adminID owns
func (e *Engine) AdminTournaments(ctx context.Context, adminID uint, scope TournamentScope) ([]domain.Tournament, error) {
	f := store.TournamentFilter{OwnerAdminID: adminID}
	switch scope {
	case ScopeAll, "":
	case ScopeCurrent:
		ended := false
		f.Ended = &ended
	case ScopeHistory:
		ended := true
		f.Ended = &ended
	default:
		return nil, validation("filter must be all, current or history")
	}
	return e.store.ListTournaments(ctx, f)
}

// AdminTournament returns one tournament owned by adminID, room included
func (e *Engine) AdminTournament(ctx context.Context, adminID, tournamentID uint) (*domain.Tournament, error) {
	t, err := e.store.GetTournament(ctx, tournamentID)
	if isNotFound(err) || (err == nil && t.OwnerAdminID != adminID) {
		return nil, errTournamentNotFound
	}
	return t, err
}

// Participants lists the roster of a tournament owned by adminID
func (e *Engine) Participants(ctx context.Context, adminID, tournamentID uint) ([]domain.Participant, error) {
	if _, err := e.AdminTournament(ctx, adminID, tournamentID); err != nil {
		return nil, err
	}
	return e.store.ListParticipants(ctx, tournamentID)
}
