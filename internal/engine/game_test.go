package engine

import (
	"strings"
	"testing"
	"time"

	"battlezone/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGames_DefaultCatalog(t *testing.T) {
	f := newFixture(t)
	games, err := f.eng.Games(f.ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, domain.GameBGMI, games[0].Name)
	assert.Equal(t, domain.GameFreeFire, games[1].Name)
}

func TestCreateGame(t *testing.T) {
	f := newFixture(t)
	g, err := f.eng.CreateGame(f.ctx, GameInput{Name: " valorant ", Description: "Tactical shooter"})
	require.NoError(t, err)
	assert.Equal(t, "VALORANT", g.Name)

	got, err := f.eng.Game(f.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tactical shooter", got.Description)

	_, err = f.eng.CreateGame(f.ctx, GameInput{Name: "Valorant"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	tests := []struct {
		name string
		in   GameInput
	}{
		{name: "empty name", in: GameInput{Name: " "}},
		{name: "long name", in: GameInput{Name: strings.Repeat("x", 101)}},
		{name: "long description", in: GameInput{Name: "A", Description: strings.Repeat("x", 501)}},
		{name: "long icon", in: GameInput{Name: "B", Icon: strings.Repeat("x", 256)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.CreateGame(f.ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTournament_GameMustBeInCatalog(t *testing.T) {
	f := newFixture(t)
	in := TournamentInput{Game: "valorant", Name: "Cup", MaxParticipants: 4, ScheduledAt: testNow.Add(time.Hour)}

	_, err := f.eng.CreateTournament(f.ctx, f.admin.ID, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.eng.OpenTournaments(f.ctx, f.admin.ID, "valorant")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.eng.CreateGame(f.ctx, GameInput{Name: "Valorant"})
	require.NoError(t, err)
	tr, err := f.eng.CreateTournament(f.ctx, f.admin.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "VALORANT", tr.Game)

	chess := "chess"
	_, err = f.eng.EditTournament(f.ctx, f.admin.ID, tr.ID, TournamentPatch{Game: &chess})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "VALORANT", f.reloadTournament(tr).Game)
}

func TestUpdateGame(t *testing.T) {
	f := newFixture(t)
	g, err := f.eng.CreateGame(f.ctx, GameInput{Name: "Valorant"})
	require.NoError(t, err)

	name, desc := "valorant mobile", "Mobile port"
	got, err := f.eng.UpdateGame(f.ctx, g.ID, GamePatch{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "VALORANT MOBILE", got.Name)
	assert.Equal(t, "Mobile port", got.Description)

	taken := domain.GameBGMI
	_, err = f.eng.UpdateGame(f.ctx, g.ID, GamePatch{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.eng.UpdateGame(f.ctx, g.ID+1000, GamePatch{Description: &desc})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGameInUse(t *testing.T) {
	f := newFixture(t)
	f.tournament(0, 4) // a BGMI tournament

	games, err := f.eng.Games(f.ctx)
	require.NoError(t, err)
	bgmi, freefire := games[0], games[1]

	rename := "PUBG"
	_, err = f.eng.UpdateGame(f.ctx, bgmi.ID, GamePatch{Name: &rename})
	assert.ErrorIs(t, err, domain.ErrGameInUse)

	desc := "Still BGMI"
	got, err := f.eng.UpdateGame(f.ctx, bgmi.ID, GamePatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, domain.GameBGMI, got.Name)

	assert.ErrorIs(t, f.eng.DeleteGame(f.ctx, bgmi.ID), domain.ErrGameInUse)
	require.NoError(t, f.eng.DeleteGame(f.ctx, freefire.ID))
	assert.ErrorIs(t, f.eng.DeleteGame(f.ctx, freefire.ID), domain.ErrNotFound)

	games, err = f.eng.Games(f.ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}
