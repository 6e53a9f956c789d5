package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"battlezone/internal/domain"
	"battlezone/internal/store"
)

// Game field limits
const (
	MaxGameNameLength        = 100
	MaxGameDescriptionLength = 500
	MaxGameImageLength       = 255
)

var errGameNotFound = domain.Errorf(domain.ErrNotFound, "game not found")

// GameInput describes a new catalog entry
type GameInput struct {
	Name        string
	Description string
	Icon        string
	Thumbnail   string
}

// GamePatch holds the catalog fields an update changes; nil fields are kept
type GamePatch struct {
	Name        *string
	Description *string
	Icon        *string
	Thumbnail   *string
}

func validateGame(g *domain.Game) error {
	switch n := utf8.RuneCountInString(g.Name); {
	case n < 1 || n > MaxGameNameLength:
		return validation("game name must be 1 to %d characters", MaxGameNameLength)
	case utf8.RuneCountInString(g.Description) > MaxGameDescriptionLength:
		return validation("game description must be at most %d characters", MaxGameDescriptionLength)
	case len(g.Icon) > MaxGameImageLength || len(g.Thumbnail) > MaxGameImageLength:
		return validation("image urls must be at most %d characters", MaxGameImageLength)
	}
	return nil
}

// knownGame rejects tournaments for games missing from the catalog
func knownGame(ctx context.Context, tx store.Tx, name string) error {
	_, err := tx.FindGameByName(ctx, name)
	if isNotFound(err) {
		return validation("unknown game %q", name)
	}
	return err
}

func gameInUse(ctx context.Context, tx store.Tx, name string) error {
	ts, err := tx.ListTournaments(ctx, store.TournamentFilter{Game: name})
	if err != nil {
		return err
	}
	if len(ts) > 0 {
		return domain.ErrGameInUse
	}
	return nil
}

// Games lists the catalog by name
func (e *Engine) Games(ctx context.Context) ([]domain.Game, error) {
	return e.store.ListGames(ctx)
}

// Game returns one catalog entry
func (e *Engine) Game(ctx context.Context, id uint) (*domain.Game, error) {
	g, err := e.store.GetGame(ctx, id)
	if isNotFound(err) {
		return nil, errGameNotFound
	}
	return g, err
}

// CreateGame adds a catalog entry. Names are stored upper-case.
func (e *Engine) CreateGame(ctx context.Context, in GameInput) (*domain.Game, error) {
	g := &domain.Game{
		Name:        domain.GameName(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
	}
	if err := validateGame(g); err != nil {
		return nil, err
	}
	if err := e.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGame applies a patch to a catalog entry. A game that tournaments
// refer to keeps its name.
func (e *Engine) UpdateGame(ctx context.Context, id uint, p GamePatch) (*domain.Game, error) {
	var out *domain.Game
	err := e.store.RunAtomic(ctx, func(tx store.Tx) error {
		g, err := tx.GetGame(ctx, id)
		if isNotFound(err) {
			return errGameNotFound
		}
		if err != nil {
			return err
		}
		if p.Name != nil {
			if name := domain.GameName(*p.Name); name != g.Name {
				if err := gameInUse(ctx, tx, g.Name); err != nil {
					return err
				}
				g.Name = name
			}
		}
		if p.Description != nil {
			g.Description = strings.TrimSpace(*p.Description)
		}
		if p.Icon != nil {
			g.Icon = strings.TrimSpace(*p.Icon)
		}
		if p.Thumbnail != nil {
			g.Thumbnail = strings.TrimSpace(*p.Thumbnail)
		}
		if err := validateGame(g); err != nil {
			return err
		}
		if err := tx.SaveGame(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

// DeleteGame removes a catalog entry no tournament refers to
func (e *Engine) DeleteGame(ctx context.Context, id uint) error {
	return e.store.RunAtomic(ctx, func(tx store.Tx) error {
		g, err := tx.GetGame(ctx, id)
		if isNotFound(err) {
			return errGameNotFound
		}
		if err != nil {
			return err
		}
		if err := gameInUse(ctx, tx, g.Name); err != nil {
			return err
		}
		return tx.DeleteGame(ctx, g.ID)
	})
}
